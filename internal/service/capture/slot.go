package capture

import (
	"gocv.io/x/gocv"

	"ewastevision/internal/service/mailbox"
	"ewastevision/internal/service/render"
)

// FrameSlot holds the latest annotated frame. Reads hand out clones, so readers
// can encode at their own pace while the producer keeps publishing.
type FrameSlot struct {
	*mailbox.Slot[gocv.Mat]
	quality int
}

// NewFrameSlot creates an empty slot whose JPEG reads use the given quality.
func NewFrameSlot(quality int) *FrameSlot {
	return &FrameSlot{
		Slot: mailbox.New(
			func(m gocv.Mat) gocv.Mat { return m.Clone() },
			func(m gocv.Mat) { m.Close() },
		),
		quality: quality,
	}
}

// JPEG encodes a copy of the current frame. ok is false while the slot is empty.
func (s *FrameSlot) JPEG() (data []byte, ok bool, err error) {
	frame, ok := s.Read()
	if !ok {
		return nil, false, nil
	}
	defer frame.Close()

	data, err = render.EncodeJPEG(frame, s.quality)
	return data, true, err
}
