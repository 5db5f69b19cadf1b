package overlay

import (
	"context"

	"github.com/Nebual/ncscreenier/frame"
)

// Selector presents the frozen frame full-screen and lets the user drag a
// rectangle over it. The call blocks until the drag finishes or is cancelled
// and MUST be invoked only from the single event-loop goroutine.
// Returns (region, cancelled, error); when cancelled is true the region is
// undefined and err is nil.
type Selector interface {
	Select(ctx context.Context, f *frame.Frame) (frame.Region, bool, error)
}

// NewSelector returns the platform implementation. Non-Windows builds get a
// stub that reports selection as unsupported.
func NewSelector() Selector {
	return newPlatformSelector()
}
