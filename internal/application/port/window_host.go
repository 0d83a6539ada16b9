package port

import (
	"time"

	"github.com/bnema/deskview/internal/domain/entity"
)

// StatusKind names an outbound status update for the shell UI.
type StatusKind string

const (
	StatusLoadSuccess        StatusKind = "load-success"
	StatusLoadRetry          StatusKind = "load-retry"
	StatusLoadFailed         StatusKind = "load-failed"
	StatusIncompatibleServer StatusKind = "incompatible-server"
	StatusActiveViewChanged  StatusKind = "active-view-changed"
	StatusNoMatchingServer   StatusKind = "no-matching-server"
	StatusTitleChanged       StatusKind = "title-changed"
	StatusTargetURLChanged   StatusKind = "target-url-changed"
	StatusUnreadChanged      StatusKind = "unread-changed"
)

// StatusMessage is sent to the window host for UI reflection.
// Only the fields relevant to Kind are set.
type StatusMessage struct {
	Kind     StatusKind
	ServerID entity.ServerID
	TabID    entity.TabID
	URL      string
	Title    string
	RetryAt  time.Time
	Err      error
	Mentions int
	Unread   bool
}

// WindowHost is the native window that hosts content surfaces.
type WindowHost interface {
	// AddSurface attaches content to the window. Attaching twice is a no-op.
	AddSurface(content Content)
	// RemoveSurface detaches content from the window.
	RemoveSurface(content Content)
	// SetTopSurface raises content above every other attached surface.
	SetTopSurface(content Content)
	// ContentBounds returns the window's drawable area.
	ContentBounds() entity.Rect
	// Send delivers a status update to the shell UI.
	Send(msg StatusMessage)
}
