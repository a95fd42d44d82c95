package ai

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"ewastevision/internal/model"
)

// LoadLabels reads class names from a text file, one per line. Blank lines are ignored.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels %s: %w", path, err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

// DefaultLabels returns a copy of the built-in e-waste class list.
func DefaultLabels() []string {
	return append([]string(nil), model.EWasteClasses...)
}
