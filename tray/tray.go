package tray

import (
	"log"
	"sync/atomic"

	"github.com/getlantern/systray"
)

// Config holds the tray labels and the callbacks its menu dispatches into.
type Config struct {
	Title     string
	Tooltip   string
	OnCapture func()
	OnExit    func()
}

// Tray wraps the systray singleton. Only one Tray may run per process.
type Tray struct {
	cfg Config
}

var ready atomic.Bool

// New prepares the tray. Call Run (usually on its own goroutine) to show it.
func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "NCScreenier"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg}, nil
}

// Run starts the system tray and blocks until Destroy or the Quit menu item.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy tears the tray down and unblocks Run.
func (t *Tray) Destroy() {
	systray.Quit()
}

// UpdateTooltip changes the hover text; a no-op before the tray is up.
func UpdateTooltip(text string) {
	if !ready.Load() {
		return
	}
	systray.SetTooltip(text)
}

func (t *Tray) onReady() {
	systray.SetIcon(getIcon())
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)
	ready.Store(true)

	mCapture := systray.AddMenuItem("Capture Region", "Select a region of the screen")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if t.cfg.OnCapture != nil {
					t.cfg.OnCapture()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func (t *Tray) onExit() {
	ready.Store(false)
	log.Printf("Tray shut down")
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}
