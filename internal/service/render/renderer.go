package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"ewastevision/internal/model"
)

var fpsColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

const (
	boxThickness   = 2
	labelScale     = 0.7
	labelThickness = 2
	labelOffset    = 10
	fpsScale       = 1.0
	fpsThickness   = 2
)

// Renderer draws detections and the FPS counter onto frames.
type Renderer struct {
	colors model.ColorMap
}

// NewRenderer creates a Renderer. A nil color map draws every class in the default color.
func NewRenderer(colors model.ColorMap) *Renderer {
	if colors == nil {
		colors = model.ColorMap{}
	}
	return &Renderer{colors: colors}
}

// Render draws every detection in order, then the FPS counter. The frame is modified in place.
func (r *Renderer) Render(frame *gocv.Mat, detections []model.Detection, fps float64) error {
	if err := r.RenderDetections(frame, detections); err != nil {
		return err
	}
	return r.RenderFPS(frame, fps)
}

// RenderDetections draws boxes and labels without the FPS counter, for still images.
func (r *Renderer) RenderDetections(frame *gocv.Mat, detections []model.Detection) error {
	for _, d := range detections {
		if err := r.drawDetection(frame, d); err != nil {
			return err
		}
	}
	return nil
}

// RenderFPS draws only the FPS counter.
func (r *Renderer) RenderFPS(frame *gocv.Mat, fps float64) error {
	text := fmt.Sprintf("FPS: %.2f", fps)
	if err := gocv.PutText(frame, text, image.Pt(20, 40), gocv.FontHersheySimplex, fpsScale, fpsColor, fpsThickness); err != nil {
		return fmt.Errorf("failed to draw fps: %w", err)
	}
	return nil
}

func (r *Renderer) drawDetection(frame *gocv.Mat, d model.Detection) error {
	c := r.colors.Color(d.ClassName)
	x1, y1 := int(d.Box.X1), int(d.Box.Y1)

	rect := image.Rect(x1, y1, int(d.Box.X2), int(d.Box.Y2))
	if err := gocv.Rectangle(frame, rect, c, boxThickness); err != nil {
		return fmt.Errorf("failed to draw rectangle: %w", err)
	}

	label := fmt.Sprintf("%s: %.2f", d.ClassName, d.Confidence)
	if err := gocv.PutText(frame, label, image.Pt(x1, y1-labelOffset), gocv.FontHersheySimplex, labelScale, c, labelThickness); err != nil {
		return fmt.Errorf("failed to draw text: %w", err)
	}
	return nil
}

// EncodeJPEG encodes a frame as JPEG.
func EncodeJPEG(frame gocv.Mat, quality int) ([]byte, error) {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
