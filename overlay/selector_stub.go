//go:build !windows

package overlay

import (
	"context"
	"fmt"

	"github.com/Nebual/ncscreenier/frame"
)

type stubSelector struct{}

func newPlatformSelector() Selector { return &stubSelector{} }

func (s *stubSelector) Select(ctx context.Context, f *frame.Frame) (frame.Region, bool, error) {
	return frame.Region{}, false, fmt.Errorf("interactive region selection not implemented for this platform")
}
