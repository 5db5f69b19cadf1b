package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Nebual/ncscreenier/clipboard"
	"github.com/Nebual/ncscreenier/config"
	"github.com/Nebual/ncscreenier/eventloop"
	"github.com/Nebual/ncscreenier/imaging"
	"github.com/Nebual/ncscreenier/logutil"
	"github.com/Nebual/ncscreenier/overlay"
	"github.com/Nebual/ncscreenier/persist"
	"github.com/Nebual/ncscreenier/session"
	"github.com/Nebual/ncscreenier/singleinstance"
	"github.com/Nebual/ncscreenier/tray"
	"github.com/Nebual/ncscreenier/upload"
)

// normalizeFlagDashes maps GNU-style --flag to Go's -flag so both spellings work.
func normalizeFlagDashes() {
	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]
		if strings.HasPrefix(arg, "--") && len(arg) > 2 {
			os.Args[i] = arg[1:]
		}
	}
}

func main() {
	// DPI awareness must be set before any window is created or metric queried.
	enableDPIAwareness()

	// The overlay message loop must stay on one OS thread.
	runtime.LockOSThread()

	watch := flag.Bool("watch", true, "Stay resident and capture on the hotkey")
	noWatch := flag.Bool("no-watch", false, "Capture one region and exit")
	directory := flag.String("directory", "", "Directory screenshots are saved to (overrides OUTPUT_DIR)")
	account := flag.String("account", "", "Account name used in share URLs (overrides ACCOUNT)")
	quiet := flag.Bool("quiet", false, "Hide the console window in watch mode")
	normalizeFlagDashes()
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *directory != "" {
		cfg.OutputDir = *directory
	}
	if *account != "" {
		cfg.Account = *account
	}

	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		// The save and upload legs still work without a clipboard.
		log.Printf("Clipboard unavailable: %v", err)
	}

	deps := buildDeps(cfg)

	if *noWatch || !*watch {
		os.Exit(runOnce(cfg, deps))
	}

	guard, err := singleinstance.Acquire(cfg.SingleInstancePort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer guard.Close()

	if *quiet {
		hideConsoleWindow()
	}

	log.Printf("NCScreenier resident: hotkey %s, saving to %s, uploading as %s",
		cfg.Hotkey, cfg.OutputDir, cfg.Account)

	loop := eventloop.New(deps)
	loop.SetDefaultTooltip(fmt.Sprintf("NCScreenier - Press %s to capture", cfg.Hotkey))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trayIcon, _ := tray.New(tray.Config{
		Title:     "NCScreenier",
		Tooltip:   fmt.Sprintf("NCScreenier - Press %s to capture", cfg.Hotkey),
		OnCapture: loop.TriggerCapture,
		OnExit:    cancel,
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	loop.StartHotkey(cfg.Hotkey)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("event loop stopped: %v", err)
	}
}

// buildDeps binds the pipeline to configured storage, upload, and clipboard.
func buildDeps(cfg *config.Config) session.Deps {
	uploader := upload.New(cfg.UploadURL, cfg.Account,
		time.Duration(cfg.UploadTimeoutSec)*time.Second)
	return session.Deps{
		Save: func(enc imaging.Encoded, name string) (string, error) {
			return persist.Save(enc, cfg.OutputDir, name)
		},
		Upload:        uploader.Upload,
		SetClipboard:  clipboard.Write,
		UploadRetries: cfg.UploadRetries,
	}
}

// runOnce performs a single capture session and reports its outcome on
// stdout, returning the process exit code.
func runOnce(cfg *config.Config, deps session.Deps) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := session.Execute(ctx, session.Opts{
		Select: overlay.NewSelector().Select,
		Deps:   deps,
	})
	if err != nil {
		if errors.Is(err, session.ErrSelectionCancelled) {
			fmt.Println("Selection cancelled")
			return 0
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	fmt.Println(st.Summary())
	if !st.Ok() {
		return 1
	}
	return 0
}
