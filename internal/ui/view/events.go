package view

import (
	"context"
	"time"

	"github.com/bnema/deskview/internal/domain/entity"
)

// Event is a lifecycle event emitted by a Surface.
type Event interface {
	Source() entity.TabID
	isEvent()
}

// Sink receives every event emitted by surfaces. ViewRegistry is the
// single implementation in the application.
type Sink interface {
	Dispatch(ctx context.Context, ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event)

// Dispatch calls f.
func (f SinkFunc) Dispatch(ctx context.Context, ev Event) { f(ctx, ev) }

// LoadSuccess is emitted when a load finished and the server is compatible.
type LoadSuccess struct {
	TabID entity.TabID
	URL   string
}

// LoadRetry is emitted when a transient failure scheduled another attempt.
type LoadRetry struct {
	TabID   entity.TabID
	URL     string
	RetryAt time.Time
	Err     error
}

// LoadFailed is emitted when the surface gave up and entered ERROR.
type LoadFailed struct {
	TabID entity.TabID
	URL   string
	Err   error
}

// IncompatibleServer is emitted when the server is older than supported.
type IncompatibleServer struct {
	TabID         entity.TabID
	ServerVersion string
}

// LoadscreenEnd is emitted when the surface became READY.
type LoadscreenEnd struct {
	TabID    entity.TabID
	TimedOut bool
}

// TargetURLChanged reports the link under the pointer. URL is empty for
// links inside the server.
type TargetURLChanged struct {
	TabID entity.TabID
	URL   string
}

// TitleChanged reports the page title with the mention count split off.
type TitleChanged struct {
	TabID    entity.TabID
	Title    string
	Mentions int
}

func (e LoadSuccess) Source() entity.TabID        { return e.TabID }
func (e LoadRetry) Source() entity.TabID          { return e.TabID }
func (e LoadFailed) Source() entity.TabID         { return e.TabID }
func (e IncompatibleServer) Source() entity.TabID { return e.TabID }
func (e LoadscreenEnd) Source() entity.TabID      { return e.TabID }
func (e TargetURLChanged) Source() entity.TabID   { return e.TabID }
func (e TitleChanged) Source() entity.TabID       { return e.TabID }

func (LoadSuccess) isEvent()        {}
func (LoadRetry) isEvent()          {}
func (LoadFailed) isEvent()         {}
func (IncompatibleServer) isEvent() {}
func (LoadscreenEnd) isEvent()      {}
func (TargetURLChanged) isEvent()   {}
func (TitleChanged) isEvent()       {}
