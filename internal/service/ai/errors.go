package ai

import "errors"

var (
	// ErrInvalidImage is returned when the input cannot be decoded into a frame.
	ErrInvalidImage = errors.New("invalid image")
	// ErrModelNotLoaded is returned when inference is requested without a usable network.
	ErrModelNotLoaded = errors.New("detection model not loaded")
	// ErrUnexpectedOutput is returned when the network output has a shape the decoder does not know.
	ErrUnexpectedOutput = errors.New("unexpected model output")
)
