package eventloop

import (
	"context"
	"log"

	"github.com/Nebual/ncscreenier/frame"
	"github.com/Nebual/ncscreenier/hotkey"
	"github.com/Nebual/ncscreenier/notification"
	"github.com/Nebual/ncscreenier/overlay"
	"github.com/Nebual/ncscreenier/session"
	"github.com/Nebual/ncscreenier/tray"
	"github.com/Nebual/ncscreenier/worker"
)

// Loop is the single-goroutine coordinator for watch mode. It owns the
// selection overlay (which must run on this goroutine) and hands the
// post-selection pipeline to the worker pool so redraws never block on I/O.
type Loop struct {
	capture        session.CaptureFunc
	selector       overlay.Selector
	pool           *worker.Pool
	deps           session.Deps
	busy           bool
	results        chan session.Status
	captureCh      chan struct{}
	defaultTooltip string
}

// New creates the loop with injected pipeline dependencies.
func New(deps session.Deps) *Loop {
	return &Loop{
		capture:        frame.Capture,
		selector:       overlay.NewSelector(),
		pool:           worker.New(1),
		deps:           deps,
		results:        make(chan session.Status, 1),
		captureCh:      make(chan struct{}, 4),
		defaultTooltip: "NCScreenier",
	}
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		tray.UpdateTooltip("NCScreenier: uploading...")
	} else {
		tray.UpdateTooltip(l.defaultTooltip)
	}
}

// StartHotkey registers the global capture hotkey and posts trigger events
// into the loop.
func (l *Loop) StartHotkey(combo string) {
	if combo == "" {
		return
	}
	hotkey.Listen(combo, l.TriggerCapture)
}

// TriggerCapture requests a capture session; used by the hotkey and the tray
// menu. Safe to call from any goroutine; drops if the loop is flooded.
func (l *Loop) TriggerCapture() {
	select {
	case l.captureCh <- struct{}{}:
	default:
	}
}

// Run processes capture triggers and pipeline results until ctx is
// cancelled. Must be called on the goroutine that owns the UI (main).
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.handleCapture(ctx)
		case st := <-l.results:
			l.handleResult(st)
		}
	}
}

func (l *Loop) handleCapture(ctx context.Context) {
	if l.busy {
		log.Printf("handleCapture: previous capture still processing, skipping")
		notification.Show("NCScreenier", "Still processing the previous capture")
		return
	}

	f, err := l.capture()
	if err != nil {
		log.Printf("handleCapture: capture failed: %v", err)
		notification.Show("NCScreenier", "Screen capture failed: "+err.Error())
		return
	}

	region, cancelled, err := l.selector.Select(ctx, f)
	if err != nil {
		log.Printf("handleCapture: selection error: %v", err)
		notification.Show("NCScreenier", "Selection failed: "+err.Error())
		return
	}
	if cancelled || region.Empty() {
		log.Printf("handleCapture: selection cancelled")
		return
	}

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, f, region, l.deps, func(st session.Status) {
		l.results <- st
	})
	if !submitted {
		l.setBusy(false)
		notification.Show("NCScreenier", "Busy, please retry")
	}
}

func (l *Loop) handleResult(st session.Status) {
	l.setBusy(false)
	log.Printf("Session finished: %s", st.Summary())
	notification.Show("NCScreenier", st.Summary())
}
