package frame

import "image"

// Region is a selected rectangle in frame-local pixel coordinates. It is
// always the product of Map, so X/Y/Width/Height are non-negative and the
// rectangle lies fully inside the owning frame.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Empty reports whether the region has no area. A click without a drag maps
// to an empty region and the pipeline treats it as a cancellation.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Rect returns the region as an image.Rectangle in frame-local coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Map normalizes two arbitrary drag corners (absolute virtual-screen
// coordinates, any drag direction) into a top-left anchored region clamped
// to bounds and translated into frame-local pixel space. It is pure and has
// no failure path: a fully off-screen or degenerate drag yields an empty
// region at the clamped origin.
func Map(origin, current image.Point, bounds image.Rectangle) Region {
	x0, x1 := origin.X, current.X
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	y0, y1 := origin.Y, current.Y
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	r := image.Rect(x0, y0, x1, y1).Intersect(bounds)
	if r.Empty() {
		p := clampPoint(image.Pt(x0, y0), bounds)
		return Region{X: p.X - bounds.Min.X, Y: p.Y - bounds.Min.Y}
	}

	return Region{
		X:      r.Min.X - bounds.Min.X,
		Y:      r.Min.Y - bounds.Min.Y,
		Width:  r.Dx(),
		Height: r.Dy(),
	}
}

func clampPoint(p image.Point, bounds image.Rectangle) image.Point {
	if p.X < bounds.Min.X {
		p.X = bounds.Min.X
	}
	if p.X > bounds.Max.X {
		p.X = bounds.Max.X
	}
	if p.Y < bounds.Min.Y {
		p.Y = bounds.Min.Y
	}
	if p.Y > bounds.Max.Y {
		p.Y = bounds.Max.Y
	}
	return p
}
