package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Nebual/ncscreenier/frame"
	"github.com/Nebual/ncscreenier/imaging"
	"github.com/Nebual/ncscreenier/persist"
)

// ErrSelectionCancelled marks a user-initiated cancel. It is a clean no-op
// termination, not a failure.
var ErrSelectionCancelled = errors.New("selection cancelled")

const uploadRetryInitialDelay = time.Second

type (
	CaptureFunc   func() (*frame.Frame, error)
	SelectFunc    func(ctx context.Context, f *frame.Frame) (frame.Region, bool, error)
	CropFunc      func(f *frame.Frame, r frame.Region) (*image.RGBA, error)
	EncodeFunc    func(img *image.RGBA) (imaging.Encoded, error)
	SaveFunc      func(enc imaging.Encoded, name string) (string, error)
	UploadFunc    func(ctx context.Context, name string, enc imaging.Encoded) (string, error)
	ClipboardFunc func(text string) error
)

// Deps are the capabilities the post-selection pipeline runs against. Crop
// and Encode default to the imaging package; the rest must be provided.
// Everything is injected so the sequencing and error composition are testable
// without a display or network.
type Deps struct {
	Crop         CropFunc
	Encode       EncodeFunc
	Save         SaveFunc
	Upload       UploadFunc
	SetClipboard ClipboardFunc

	// UploadRetries is the number of re-attempts after the first upload
	// failure. The upload client itself is single-shot.
	UploadRetries int

	// UploadRetryDelay is the initial backoff between attempts; it doubles
	// per retry. Zero means one second.
	UploadRetryDelay time.Duration
}

// Status is the composite outcome of one capture session. Each leg succeeds
// or fails independently so the user sees partial success instead of an
// opaque single failure.
type Status struct {
	Path string
	URL  string

	Saved        bool
	Uploaded     bool
	ClipboardSet bool

	// PipelineErr is a crop or encode failure; it short-circuits the rest.
	PipelineErr  error
	SaveErr      error
	UploadErr    error
	ClipboardErr error
}

// Summary renders the per-leg outcome as a one-line user-facing status.
func (s Status) Summary() string {
	if s.PipelineErr != nil {
		return fmt.Sprintf("capture failed: %v", s.PipelineErr)
	}

	var parts []string
	switch {
	case s.Saved:
		parts = append(parts, fmt.Sprintf("saved %s", s.Path))
	case s.SaveErr != nil:
		parts = append(parts, fmt.Sprintf("save failed (%v)", s.SaveErr))
	}
	switch {
	case s.Uploaded:
		parts = append(parts, fmt.Sprintf("uploaded %s", s.URL))
	case s.UploadErr != nil:
		parts = append(parts, fmt.Sprintf("upload failed (%v)", s.UploadErr))
	}
	switch {
	case s.ClipboardSet:
		parts = append(parts, "URL copied to clipboard")
	case s.ClipboardErr != nil:
		parts = append(parts, fmt.Sprintf("clipboard failed (%v)", s.ClipboardErr))
	default:
		parts = append(parts, "clipboard unchanged")
	}
	return strings.Join(parts, "; ")
}

// Ok reports whether at least one durable side effect succeeded.
func (s Status) Ok() bool {
	return s.Saved || s.Uploaded
}

// Opts wires a full session: capture, then selection, then Process.
type Opts struct {
	Capture CaptureFunc
	Select  SelectFunc
	Deps    Deps
}

// Execute runs one complete session. Capture failures are fatal and happen
// before any overlay appears; a cancelled (or zero-area) selection returns
// ErrSelectionCancelled with no side effects. The captured frame is owned by
// this call and discarded when it returns.
func Execute(ctx context.Context, opts Opts) (Status, error) {
	capture := opts.Capture
	if capture == nil {
		capture = frame.Capture
	}
	if opts.Select == nil {
		return Status{}, errors.New("session: Select is required")
	}

	f, err := capture()
	if err != nil {
		return Status{}, fmt.Errorf("screen capture failed: %w", err)
	}
	log.Printf("Captured frame %v across %d display(s)", f.Bounds, f.Displays)

	region, cancelled, err := opts.Select(ctx, f)
	if err != nil {
		return Status{}, fmt.Errorf("region selection failed: %w", err)
	}
	if cancelled || region.Empty() {
		return Status{}, ErrSelectionCancelled
	}

	// Cancellation must be observed before any crop/encode work begins.
	select {
	case <-ctx.Done():
		return Status{}, ctx.Err()
	default:
	}

	return Process(ctx, f, region, opts.Deps), nil
}

// Process runs the post-selection pipeline: crop, encode, then save and
// upload concurrently against the same immutable encoded buffer, then the
// clipboard once the upload outcome is known. A save failure never blocks
// the upload and vice versa.
func Process(ctx context.Context, f *frame.Frame, region frame.Region, deps Deps) Status {
	var st Status

	crop := deps.Crop
	if crop == nil {
		crop = imaging.Crop
	}
	encode := deps.Encode
	if encode == nil {
		encode = imaging.EncodePNG
	}

	raster, err := crop(f, region)
	if err != nil {
		st.PipelineErr = err
		return st
	}
	enc, err := encode(raster)
	if err != nil {
		st.PipelineErr = err
		return st
	}

	name := persist.NewName(enc.Format, time.Now())
	log.Printf("Processing %dx%d selection as %s (%d bytes)", region.Width, region.Height, name, len(enc.Bytes))

	var wg sync.WaitGroup
	if deps.Save != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Path, st.SaveErr = deps.Save(enc, name)
			st.Saved = st.SaveErr == nil
		}()
	}
	if deps.Upload != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.URL, st.UploadErr = uploadWithRetry(ctx, deps, name, enc)
			st.Uploaded = st.UploadErr == nil
		}()
	}
	wg.Wait()

	if st.Saved {
		log.Printf("Saved %s", st.Path)
	} else if st.SaveErr != nil {
		log.Printf("Save failed: %v", st.SaveErr)
	}

	// The clipboard payload depends on the upload result, so it strictly
	// follows both legs. No URL means the clipboard is left untouched.
	if st.Uploaded && deps.SetClipboard != nil {
		if err := deps.SetClipboard(st.URL); err != nil {
			st.ClipboardErr = err
			log.Printf("Clipboard write failed: %v", err)
		} else {
			st.ClipboardSet = true
			log.Printf("Copied %s to clipboard", st.URL)
		}
	}

	return st
}

// uploadWithRetry re-invokes the single-shot uploader with a doubling delay
// to ride out transient network failures.
func uploadWithRetry(ctx context.Context, deps Deps, name string, enc imaging.Encoded) (string, error) {
	attempts := deps.UploadRetries + 1
	delay := deps.UploadRetryDelay
	if delay <= 0 {
		delay = uploadRetryInitialDelay
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			log.Printf("Retrying upload (%d/%d) after %v: %v", i, attempts-1, delay, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		url, err := deps.Upload(ctx, name, enc)
		if err == nil {
			return url, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}
