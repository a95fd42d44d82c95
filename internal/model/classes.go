package model

import (
	"image/color"
	"sort"
)

// EWasteClasses are the class names the bundled e-waste models were trained on.
var EWasteClasses = []string{
	"Mobile",
	"PCB",
	"Phone_Battery",
	"Remote",
	"Adapter",
	"Headset",
	"Keyboard",
	"Mouse",
}

// DefaultClassColor is used for classes missing from a ColorMap.
var DefaultClassColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ColorMap maps a class name to its display color. It is built once at
// startup and only read afterwards.
type ColorMap map[string]color.RGBA

// EWasteColors returns the display colors of the e-waste classes.
func EWasteColors() ColorMap {
	return ColorMap{
		"Mobile":        {R: 0, G: 0, B: 255, A: 255},   // niebieski
		"PCB":           {R: 0, G: 255, B: 0, A: 255},   // zielony
		"Phone_Battery": {R: 255, G: 0, B: 0, A: 255},   // czerwony
		"Remote":        {R: 0, G: 255, B: 255, A: 255}, // cyjan
		"Adapter":       {R: 255, G: 0, B: 255, A: 255}, // magenta
		"Headset":       {R: 255, G: 255, B: 0, A: 255}, // żółty
		"Keyboard":      {R: 128, G: 0, B: 128, A: 255}, // fioletowy
		"Mouse":         {R: 255, G: 128, B: 0, A: 255}, // pomarańczowy
	}
}

// Color returns the color for a class, falling back to DefaultClassColor.
func (m ColorMap) Color(className string) color.RGBA {
	if c, ok := m[className]; ok {
		return c
	}
	return DefaultClassColor
}

// Names returns the class names in a stable order.
func (m ColorMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
