package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Nebual/ncscreenier/frame"
	"github.com/Nebual/ncscreenier/imaging"
	"github.com/Nebual/ncscreenier/persist"
)

func fullHDFrame() *frame.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 1920, 1080))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	return &frame.Frame{Img: img, Bounds: image.Rect(0, 0, 1920, 1080), Taken: time.Now(), Displays: 1}
}

type fakeEnv struct {
	dir       string
	clipboard string
	uploads   atomic.Int32
	uploadErr error
	clipErr   error
}

func (e *fakeEnv) deps() Deps {
	return Deps{
		Save: func(enc imaging.Encoded, name string) (string, error) {
			return persist.Save(enc, e.dir, name)
		},
		Upload: func(ctx context.Context, name string, enc imaging.Encoded) (string, error) {
			e.uploads.Add(1)
			if e.uploadErr != nil {
				return "", e.uploadErr
			}
			return "https://x.test/abc", nil
		},
		SetClipboard: func(text string) error {
			if e.clipErr != nil {
				return e.clipErr
			}
			e.clipboard = text
			return nil
		},
	}
}

func (e *fakeEnv) savedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		t.Fatalf("reading output dir: %v", err)
	}
	var names []string
	for _, ent := range entries {
		names = append(names, ent.Name())
	}
	return names
}

func TestExecuteFullPipeline(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}
	f := fullHDFrame()

	st, err := Execute(context.Background(), Opts{
		Capture: func() (*frame.Frame, error) { return f, nil },
		Select: func(ctx context.Context, got *frame.Frame) (frame.Region, bool, error) {
			if got != f {
				t.Error("selector received a different frame than capture produced")
			}
			return frame.Map(image.Pt(100, 50), image.Pt(300, 200), got.Bounds), false, nil
		},
		Deps: env.deps(),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !st.Saved || !st.Uploaded || !st.ClipboardSet {
		t.Fatalf("composite status = %+v, want all legs succeeded", st)
	}
	if env.clipboard != "https://x.test/abc" {
		t.Errorf("clipboard = %q, want the exact share URL", env.clipboard)
	}
	info, err := os.Stat(st.Path)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("saved file is empty")
	}
	if !strings.HasSuffix(st.Path, ".png") {
		t.Errorf("saved path %q lacks .png extension", st.Path)
	}
}

func TestExecuteCroppedSizeMatchesSelection(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}
	f := fullHDFrame()

	var gotW, gotH int
	deps := env.deps()
	deps.Encode = func(img *image.RGBA) (imaging.Encoded, error) {
		gotW, gotH = img.Bounds().Dx(), img.Bounds().Dy()
		return imaging.EncodePNG(img)
	}

	_, err := Execute(context.Background(), Opts{
		Capture: func() (*frame.Frame, error) { return f, nil },
		Select: func(ctx context.Context, got *frame.Frame) (frame.Region, bool, error) {
			return frame.Map(image.Pt(100, 50), image.Pt(300, 200), got.Bounds), false, nil
		},
		Deps: deps,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotW != 200 || gotH != 150 {
		t.Errorf("cropped raster = %dx%d, want 200x150", gotW, gotH)
	}
}

func TestExecuteCancelledSelectionHasNoSideEffects(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}

	_, err := Execute(context.Background(), Opts{
		Capture: func() (*frame.Frame, error) { return fullHDFrame(), nil },
		Select: func(ctx context.Context, f *frame.Frame) (frame.Region, bool, error) {
			return frame.Region{}, true, nil
		},
		Deps: env.deps(),
	})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Fatalf("err = %v, want ErrSelectionCancelled", err)
	}

	if files := env.savedFiles(t); len(files) != 0 {
		t.Errorf("cancelled selection wrote files: %v", files)
	}
	if n := env.uploads.Load(); n != 0 {
		t.Errorf("cancelled selection made %d upload calls", n)
	}
	if env.clipboard != "" {
		t.Errorf("cancelled selection touched clipboard: %q", env.clipboard)
	}
}

func TestExecuteZeroAreaSelectionIsCancellation(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}

	_, err := Execute(context.Background(), Opts{
		Capture: func() (*frame.Frame, error) { return fullHDFrame(), nil },
		Select: func(ctx context.Context, f *frame.Frame) (frame.Region, bool, error) {
			// Selector leaked a click-without-drag through; Execute must
			// still treat it as a cancellation.
			return frame.Map(image.Pt(400, 300), image.Pt(400, 300), f.Bounds), false, nil
		},
		Deps: env.deps(),
	})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Fatalf("err = %v, want ErrSelectionCancelled", err)
	}
	if n := env.uploads.Load(); n != 0 {
		t.Errorf("zero-area selection made %d upload calls", n)
	}
}

func TestExecuteCaptureFailureIsFatal(t *testing.T) {
	selectorCalled := false
	_, err := Execute(context.Background(), Opts{
		Capture: func() (*frame.Frame, error) { return nil, frame.ErrNoDisplay },
		Select: func(ctx context.Context, f *frame.Frame) (frame.Region, bool, error) {
			selectorCalled = true
			return frame.Region{}, true, nil
		},
	})
	if !errors.Is(err, frame.ErrNoDisplay) {
		t.Fatalf("err = %v, want ErrNoDisplay", err)
	}
	if selectorCalled {
		t.Error("selection UI appeared despite fatal capture error")
	}
}

func TestProcessUploadFailureStillSaves(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir(), uploadErr: fmt.Errorf("connection refused")}
	f := fullHDFrame()

	st := Process(context.Background(), f, frame.Region{X: 0, Y: 0, Width: 50, Height: 40}, env.deps())

	if !st.Saved {
		t.Errorf("save leg failed alongside upload: %v", st.SaveErr)
	}
	if st.Uploaded || st.UploadErr == nil {
		t.Error("upload unexpectedly succeeded")
	}
	if st.ClipboardSet || env.clipboard != "" {
		t.Error("clipboard was written despite upload failure")
	}

	summary := st.Summary()
	if !strings.Contains(summary, "saved") || !strings.Contains(summary, "upload failed") {
		t.Errorf("summary %q does not report partial success", summary)
	}
}

func TestProcessSaveFailureStillUploadsAndCopies(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}
	deps := env.deps()
	deps.Save = func(enc imaging.Encoded, name string) (string, error) {
		return "", fmt.Errorf("disk full")
	}
	f := fullHDFrame()

	st := Process(context.Background(), f, frame.Region{X: 10, Y: 10, Width: 30, Height: 30}, deps)

	if st.Saved {
		t.Error("save unexpectedly succeeded")
	}
	if !st.Uploaded {
		t.Fatalf("upload blocked by save failure: %v", st.UploadErr)
	}
	if !st.ClipboardSet || env.clipboard != "https://x.test/abc" {
		t.Errorf("clipboard = %q set=%v, want URL despite save failure", env.clipboard, st.ClipboardSet)
	}
}

func TestProcessClipboardFailureIsNotFatal(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir(), clipErr: fmt.Errorf("clipboard locked")}
	f := fullHDFrame()

	st := Process(context.Background(), f, frame.Region{X: 0, Y: 0, Width: 20, Height: 20}, env.deps())

	if !st.Saved || !st.Uploaded {
		t.Fatalf("save/upload legs failed: %+v", st)
	}
	if st.ClipboardSet || st.ClipboardErr == nil {
		t.Error("clipboard failure not recorded")
	}
	if !st.Ok() {
		t.Error("session with saved+uploaded image reported not ok")
	}
}

func TestProcessRetriesUpload(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}
	var calls atomic.Int32
	deps := env.deps()
	deps.UploadRetries = 3
	deps.UploadRetryDelay = time.Millisecond
	deps.Upload = func(ctx context.Context, name string, enc imaging.Encoded) (string, error) {
		if calls.Add(1) < 3 {
			return "", fmt.Errorf("transient network error")
		}
		return "https://x.test/abc", nil
	}
	f := fullHDFrame()

	st := Process(context.Background(), f, frame.Region{X: 0, Y: 0, Width: 10, Height: 10}, deps)

	if !st.Uploaded {
		t.Fatalf("upload did not recover: %v", st.UploadErr)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("upload attempts = %d, want 3", got)
	}
	if env.clipboard != "https://x.test/abc" {
		t.Errorf("clipboard = %q after recovered upload", env.clipboard)
	}
}

func TestProcessSharedFilenameAcrossLegs(t *testing.T) {
	env := &fakeEnv{dir: t.TempDir()}
	var uploadName string
	deps := env.deps()
	deps.Upload = func(ctx context.Context, name string, enc imaging.Encoded) (string, error) {
		uploadName = name
		return "https://x.test/" + name, nil
	}
	f := fullHDFrame()

	st := Process(context.Background(), f, frame.Region{X: 0, Y: 0, Width: 10, Height: 10}, deps)

	if filepath.Base(st.Path) != uploadName {
		t.Errorf("saved as %q but uploaded as %q", filepath.Base(st.Path), uploadName)
	}
}
