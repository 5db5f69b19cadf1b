package frame

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
)

// ErrNoDisplay is returned when no active display is available to capture.
var ErrNoDisplay = errors.New("no active displays found")

// Frame is a still snapshot of the whole virtual screen. It is captured once
// per session and never mutated afterwards; consumers crop copies out of it.
type Frame struct {
	Img      *image.RGBA
	Bounds   image.Rectangle // virtual-screen bounds, absolute coordinates
	Taken    time.Time
	Displays int
}

// Capture grabs the union of all active display bounds in a single shot so
// the image is consistent across monitors.
func Capture() (*Frame, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}

	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}

	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture virtual screen %v: %w", union, err)
	}

	return &Frame{
		Img:      img,
		Bounds:   union,
		Taken:    time.Now(),
		Displays: n,
	}, nil
}

// DisplayBounds returns the bounds of a single display, for callers that
// want a per-monitor frame instead of the full virtual screen.
func DisplayBounds(index int) (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	if index < 0 || index >= n {
		return image.Rectangle{}, fmt.Errorf("display %d out of range (have %d)", index, n)
	}
	return screenshot.GetDisplayBounds(index), nil
}
