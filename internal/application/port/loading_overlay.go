package port

import "github.com/bnema/deskview/internal/domain/entity"

// LoadingOverlay is the single shared loading surface above the content.
type LoadingOverlay interface {
	Show()
	// StartFade begins the fade-out animation. The shell reports its end
	// through the loading-screen-animation-finished signal.
	StartFade()
	Hide()
	SetBounds(rect entity.Rect)
	SetDarkMode(dark bool)
}
