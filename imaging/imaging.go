package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/Nebual/ncscreenier/frame"
)

// ErrEmptyRaster is returned when a zero-width or zero-height raster reaches
// the encoder. The region clamp makes this unreachable in the normal flow.
var ErrEmptyRaster = errors.New("raster has zero width or height")

// Encoded is an immutable encoded image. The persister and uploader read the
// same buffer independently; nothing mutates it after creation.
type Encoded struct {
	Bytes  []byte
	Format string
}

// Crop copies the sub-raster described by r out of the frame into a fresh
// buffer. The source frame is never touched. A rectangle outside the frame
// is an internal-consistency failure: Map already clamped every region.
func Crop(f *frame.Frame, r frame.Region) (*image.RGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("cannot crop empty region %+v", r)
	}

	src := f.Img.Bounds()
	rect := r.Rect().Add(src.Min)
	if !rect.In(src) {
		return nil, fmt.Errorf("crop rect %v escapes frame bounds %v", rect, src)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(out, out.Bounds(), f.Img, rect.Min, draw.Src)
	return out, nil
}

// EncodePNG serializes the raster as PNG. No metadata is written, so the
// same pixels always produce identical bytes.
func EncodePNG(img *image.RGBA) (Encoded, error) {
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return Encoded{}, ErrEmptyRaster
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Encoded{}, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return Encoded{Bytes: buf.Bytes(), Format: "png"}, nil
}
