package entity

// Rect is a surface position and size in window content coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// SameSize reports whether r and o share width and height.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// Inset removes top pixels from the top edge, clamping at zero height.
func (r Rect) Inset(top int) Rect {
	h := r.Height - top
	if h < 0 {
		h = 0
	}
	return Rect{X: r.X, Y: r.Y + top, Width: r.Width, Height: h}
}
