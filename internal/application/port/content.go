package port

import (
	"context"
	"net/http"

	"github.com/bnema/deskview/internal/domain/entity"
)

// LoadRequest describes one navigation.
type LoadRequest struct {
	URL string
	// Header is added to the outgoing request (User-Agent, Cookie).
	Header http.Header
	// OnResponse, when set, receives the headers of the final response
	// before done is called. It may be called from any goroutine.
	OnResponse func(http.Header)
}

// Content is one embedded web-content surface provided by the engine.
type Content interface {
	// LoadURL starts loading req.URL. done is called exactly once with nil
	// on success or an *entity.LoadError describing the failure. done may
	// be called from any goroutine.
	LoadURL(ctx context.Context, req LoadRequest, done func(error))
	CurrentURL() string
	CanGoBack() bool
	CanGoForward() bool
	ClearHistory()
	GoToOffset(offset int) error
	// Send delivers a message to the embedded application.
	Send(channel string, payload any) error
	SetBounds(rect entity.Rect)
	Focus()
	Close()
	IsDestroyed() bool
}

// ContentFactory creates engine surfaces.
type ContentFactory interface {
	NewContent(ctx context.Context, serverID entity.ServerID, tabID entity.TabID) (Content, error)
}
