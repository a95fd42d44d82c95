package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ewastevision/internal/config"
	"ewastevision/internal/dto"
	"ewastevision/internal/logger"
	"ewastevision/internal/model"
	"ewastevision/internal/repository"
)

const timestampLayout = "2006-01-02_15-04-05.000"

// ErrSnapshotNotFound is returned when a snapshot is not recorded or its file is gone.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// BufferService buffers annotated frames in memory and periodically flushes them to disk.
type BufferService struct {
	imagesDir     string
	limit         int
	everyNth      uint64
	flushInterval time.Duration
	images        []dto.BufferedImage
	bufferCount   map[string]int
	mu            sync.Mutex
	logger        *logger.Logger
	snapshotRepo  repository.SnapshotRepository
	detectionRepo repository.DetectionRepository
	now           func() time.Time
}

// NewBufferService creates a new BufferService. Repositories may be nil, in which
// case snapshots are only written to disk.
func NewBufferService(cfg *config.Config, logger *logger.Logger, snapshotRepo repository.SnapshotRepository, detectionRepo repository.DetectionRepository) *BufferService {
	everyNth := cfg.SnapshotEveryNth
	if everyNth < 0 {
		everyNth = 0
	}
	return &BufferService{
		imagesDir:     cfg.ImageDirectory,
		limit:         cfg.SnapshotBufferLimit,
		everyNth:      uint64(everyNth),
		flushInterval: time.Duration(cfg.SnapshotFlushInterval) * time.Second,
		images:        make([]dto.BufferedImage, 0),
		bufferCount:   make(map[string]int),
		logger:        logger,
		snapshotRepo:  snapshotRepo,
		detectionRepo: detectionRepo,
		now:           time.Now,
	}
}

// Run flushes buffered images on every tick until ctx is done, then flushes once more.
func (s *BufferService) Run(ctx context.Context) {
	interval := s.flushInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.FlushImages()
			return
		case <-ticker.C:
			s.FlushImages()
		}
	}
}

// Wants reports whether frame number seq should be recorded. Only frames with
// at least one detection are worth keeping.
func (s *BufferService) Wants(seq uint64, detections int) bool {
	if s.everyNth == 0 || detections == 0 {
		return false
	}
	return seq%s.everyNth == 0
}

// AddImage appends an encoded frame to the in-memory buffer for a source.
// It returns false when the buffer for that source is already full.
func (s *BufferService) AddImage(imageData []byte, source string, detections []model.Detection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bufferCount[source] >= s.limit {
		return false
	}

	s.images = append(s.images, dto.BufferedImage{
		Timestamp:  s.now(),
		Source:     source,
		Detections: append([]model.Detection(nil), detections...),
		Data:       imageData,
	})
	s.bufferCount[source]++
	s.logger.Info("Buffer size for %s: %d/%d", source, s.bufferCount[source], s.limit)
	return true
}

// FlushImages writes buffered images to disk, records them in the database and
// resets the buffer. It returns how many images were saved. The lock is only held
// while the buffer is swapped out, so AddImage never waits on disk or database I/O.
func (s *BufferService) FlushImages() int {
	s.mu.Lock()
	pending := len(s.images)
	s.mu.Unlock()

	if pending == 0 {
		return 0
	}

	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		s.logger.Error("Error creating directory: %v", err)
		return 0
	}

	s.mu.Lock()
	images := s.images
	s.images = make([]dto.BufferedImage, 0, len(images))
	s.bufferCount = make(map[string]int)
	s.mu.Unlock()

	savedCount := 0
	for _, image := range images {
		filename := snapshotFilename(image)
		fullpath := filepath.Join(s.imagesDir, filename)

		if err := os.WriteFile(fullpath, image.Data, 0644); err != nil {
			s.logger.Error("Error saving image %s: %v", filename, err)
			continue
		}

		if s.snapshotRepo != nil {
			if err := s.record(image, filename, fullpath); err != nil {
				s.logger.Error("Error saving snapshot %s to database: %v", filename, err)
				continue
			}
		}

		savedCount++
	}

	s.logger.Info("Flushed %d images to disk", savedCount)
	return savedCount
}

func (s *BufferService) record(image dto.BufferedImage, filename, fullpath string) error {
	snapshotID, err := s.snapshotRepo.Insert(&model.Snapshot{
		Filename:  filename,
		Source:    image.Source,
		Timestamp: image.Timestamp,
		FilePath:  fullpath,
		FileSize:  int64(len(image.Data)),
	})
	if err != nil {
		return err
	}

	if s.detectionRepo == nil || len(image.Detections) == 0 {
		return nil
	}

	rows := make([]model.SnapshotDetection, 0, len(image.Detections))
	for _, d := range image.Detections {
		rows = append(rows, model.SnapshotDetection{
			SnapshotID: snapshotID,
			ClassName:  d.ClassName,
			ClassID:    d.ClassID,
			X1:         d.Box.X1,
			Y1:         d.Box.Y1,
			X2:         d.Box.X2,
			Y2:         d.Box.Y2,
			Confidence: d.Confidence,
		})
	}
	return s.detectionRepo.InsertBatch(rows)
}

// snapshotFilename builds "<timestamp>_<source>_<class>_<class>.jpg" with unique class names.
func snapshotFilename(image dto.BufferedImage) string {
	objects := uniqueClassNames(image.Detections)
	name := image.Timestamp.Format(timestampLayout) + "_" + sanitize(image.Source)
	if len(objects) > 0 {
		name += "_" + strings.Join(objects, "_")
	}
	return name + ".jpg"
}

func uniqueClassNames(detections []model.Detection) []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range detections {
		n := sanitize(d.ClassName)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, s)
}

// Recent lists recorded snapshots, newest first, with their detections.
func (s *BufferService) Recent(filter *dto.SnapshotFilters) (*dto.SnapshotsData, error) {
	data := &dto.SnapshotsData{
		Snapshots: []dto.SnapshotInfo{},
		ImagesDir: s.imagesDir,
	}
	if filter != nil {
		data.Limit = filter.Limit
	}
	if s.snapshotRepo == nil {
		return data, nil
	}

	snapshots, err := s.snapshotRepo.GetRecent(filter)
	if err != nil {
		return nil, err
	}

	for _, snap := range snapshots {
		info := dto.SnapshotInfo{
			ID:         snap.ID,
			Name:       snap.Filename,
			Date:       snap.Timestamp,
			TimeOfDay:  snap.Timestamp,
			Source:     snap.Source,
			Objects:    []string{},
			Detections: []dto.DetectionResult{},
		}

		if s.detectionRepo != nil {
			rows, err := s.detectionRepo.GetBySnapshotID(snap.ID)
			if err != nil {
				return nil, err
			}
			seen := make(map[string]bool)
			for _, r := range rows {
				if !seen[r.ClassName] {
					seen[r.ClassName] = true
					info.Objects = append(info.Objects, r.ClassName)
				}
				info.Detections = append(info.Detections, dto.DetectionResult{
					BBox:       []float64{r.X1, r.Y1, r.X2, r.Y2},
					Confidence: r.Confidence,
					Class:      r.ClassID,
					Name:       r.ClassName,
				})
			}
		}

		data.Snapshots = append(data.Snapshots, info)
	}

	data.Length = len(data.Snapshots)
	return data, nil
}

// Path resolves a recorded snapshot name to its file on disk.
func (s *BufferService) Path(filename string) (string, error) {
	base := filepath.Base(filename)
	if base != filename || base == "." || base == "/" {
		return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, filename)
	}

	if s.snapshotRepo != nil {
		snap, err := s.snapshotRepo.GetByFilename(base)
		if err != nil {
			return "", err
		}
		if snap == nil {
			return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, filename)
		}
	}

	fullpath := filepath.Join(s.imagesDir, base)
	if _, err := os.Stat(fullpath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, filename)
	}
	return fullpath, nil
}
