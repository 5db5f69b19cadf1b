package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when the system clipboard cannot be accessed.
// Not fatal: an image that was already saved or uploaded stays saved.
var ErrUnavailable = errors.New("system clipboard unavailable")

var (
	mu    sync.Mutex
	ready bool
)

// Init connects to the system clipboard. Must be called once before Write.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	ready = true
	return nil
}

// Write replaces the clipboard text content. Mutex-guarded to prevent
// corruption under parallel writes.
func Write(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
