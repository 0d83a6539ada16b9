package coordinator

import (
	"context"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
)

// LoadingState is the tri-state of the shared loading overlay.
type LoadingState int

const (
	LoadingHidden LoadingState = iota
	LoadingVisible
	LoadingFading
)

// String returns a human-readable representation of the state.
func (s LoadingState) String() string {
	switch s {
	case LoadingHidden:
		return "hidden"
	case LoadingVisible:
		return "visible"
	case LoadingFading:
		return "fading"
	default:
		return "unknown"
	}
}

// LoadingScreen drives the single overlay shown while the current surface
// is not ready. Repeated Show or Fade calls never re-trigger the overlay.
type LoadingScreen struct {
	ctx     context.Context
	overlay port.LoadingOverlay
	state   LoadingState
	bounds  entity.Rect
	dark    bool
}

// NewLoadingScreen wraps overlay. The overlay starts hidden.
func NewLoadingScreen(ctx context.Context, overlay port.LoadingOverlay) *LoadingScreen {
	return &LoadingScreen{
		ctx:     logging.WithComponent(ctx, "loading-screen"),
		overlay: overlay,
	}
}

// State returns the current state.
func (l *LoadingScreen) State() LoadingState { return l.state }

// IsHidden reports whether the overlay is fully hidden.
func (l *LoadingScreen) IsHidden() bool { return l.state == LoadingHidden }

// Show makes the overlay visible. Showing during a fade cancels it.
func (l *LoadingScreen) Show() {
	if l.state == LoadingVisible {
		return
	}
	logging.FromContext(l.ctx).Debug().Str("from", l.state.String()).Msg("showing loading screen")
	l.state = LoadingVisible
	l.overlay.Show()
}

// Fade starts the fade-out. Only a visible overlay fades.
func (l *LoadingScreen) Fade() {
	if l.state != LoadingVisible {
		return
	}
	logging.FromContext(l.ctx).Debug().Msg("fading loading screen")
	l.state = LoadingFading
	l.overlay.StartFade()
}

// AnimationFinished hides the overlay once the shell's fade completed.
// A finished animation after a re-show is ignored.
func (l *LoadingScreen) AnimationFinished() {
	if l.state != LoadingFading {
		return
	}
	l.state = LoadingHidden
	l.overlay.Hide()
}

// SetBounds positions the overlay.
func (l *LoadingScreen) SetBounds(rect entity.Rect) {
	if rect == l.bounds {
		return
	}
	l.bounds = rect
	l.overlay.SetBounds(rect)
}

// SetDarkMode switches the overlay theme.
func (l *LoadingScreen) SetDarkMode(dark bool) {
	if dark == l.dark {
		return
	}
	l.dark = dark
	l.overlay.SetDarkMode(dark)
}
