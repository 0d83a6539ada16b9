// Package viewtest provides in-memory engine, window and overlay fakes
// for exercising surfaces without a toolkit.
package viewtest

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
)

// PendingLoad is a load request waiting for the test to complete it.
type PendingLoad struct {
	URL        string
	UserAgent  string
	Header     http.Header
	Ctx        context.Context
	onResponse func(http.Header)
	done       func(error)
	completed  bool
}

// Completed reports whether the test already resolved the load.
func (l *PendingLoad) Completed() bool { return l.completed }

// Message is something sent to the embedded app.
type Message struct {
	Channel string
	Payload any
}

// Content is a scriptable port.Content.
type Content struct {
	ServerID entity.ServerID
	TabID    entity.TabID

	URL          string
	Back         bool
	Forward      bool
	Cleared      int
	Loads        []*PendingLoad
	Sent         []Message
	Bounds       entity.Rect
	Focused      int
	Offsets      []int
	OffsetErr    error
	Closed       bool
	closeInvoked int
}

var _ port.Content = (*Content)(nil)

func (c *Content) LoadURL(ctx context.Context, req port.LoadRequest, done func(error)) {
	c.Loads = append(c.Loads, &PendingLoad{
		URL:        req.URL,
		UserAgent:  req.Header.Get("User-Agent"),
		Header:     req.Header,
		Ctx:        ctx,
		onResponse: req.OnResponse,
		done:       done,
	})
}

// Respond delivers response headers for the latest load without
// completing it.
func (c *Content) Respond(header http.Header) {
	l := c.LastLoad()
	if l == nil || l.completed || l.onResponse == nil {
		return
	}
	l.onResponse(header)
}

// LastLoad returns the most recent load request, or nil.
func (c *Content) LastLoad() *PendingLoad {
	if len(c.Loads) == 0 {
		return nil
	}
	return c.Loads[len(c.Loads)-1]
}

// Succeed completes the latest load successfully and navigates to it.
func (c *Content) Succeed() {
	l := c.LastLoad()
	if l == nil || l.completed {
		return
	}
	c.URL = l.URL
	c.complete(l, nil)
}

// Fail completes the latest load with a load error of kind.
func (c *Content) Fail(kind entity.LoadErrorKind) {
	l := c.LastLoad()
	if l == nil || l.completed {
		return
	}
	c.complete(l, &entity.LoadError{Kind: kind, URL: l.URL, Err: errors.New("fake load failure")})
}

// Complete resolves a specific load, stale or not.
func (c *Content) Complete(l *PendingLoad, err error) {
	if err == nil {
		c.URL = l.URL
	}
	c.complete(l, err)
}

func (c *Content) complete(l *PendingLoad, err error) {
	l.completed = true
	l.done(err)
}

func (c *Content) CurrentURL() string { return c.URL }
func (c *Content) CanGoBack() bool    { return c.Back }
func (c *Content) CanGoForward() bool { return c.Forward }

func (c *Content) ClearHistory() {
	c.Cleared++
	c.Back = false
	c.Forward = false
}

func (c *Content) GoToOffset(offset int) error {
	c.Offsets = append(c.Offsets, offset)
	return c.OffsetErr
}

func (c *Content) Send(channel string, payload any) error {
	c.Sent = append(c.Sent, Message{Channel: channel, Payload: payload})
	return nil
}

// SentOn returns payloads sent on channel, in order.
func (c *Content) SentOn(channel string) []any {
	var out []any
	for _, m := range c.Sent {
		if m.Channel == channel {
			out = append(out, m.Payload)
		}
	}
	return out
}

func (c *Content) SetBounds(rect entity.Rect) { c.Bounds = rect }
func (c *Content) Focus()                     { c.Focused++ }

func (c *Content) Close() {
	c.closeInvoked++
	c.Closed = true
}

// CloseCalls counts Close invocations.
func (c *Content) CloseCalls() int { return c.closeInvoked }

func (c *Content) IsDestroyed() bool { return c.Closed }

// Factory records every content it creates.
type Factory struct {
	Created []*Content
	ByTab   map[entity.TabID][]*Content
	Err     error
}

var _ port.ContentFactory = (*Factory)(nil)

// NewFactory returns an empty factory.
func NewFactory() *Factory {
	return &Factory{ByTab: make(map[entity.TabID][]*Content)}
}

func (f *Factory) NewContent(_ context.Context, serverID entity.ServerID, tabID entity.TabID) (port.Content, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	c := &Content{ServerID: serverID, TabID: tabID}
	f.Created = append(f.Created, c)
	f.ByTab[tabID] = append(f.ByTab[tabID], c)
	return c, nil
}

// Latest returns the newest content created for tabID.
func (f *Factory) Latest(tabID entity.TabID) *Content {
	list := f.ByTab[tabID]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// Host is a port.WindowHost keeping an attachment list.
type Host struct {
	Attached []port.Content
	Top      port.Content
	Rect     entity.Rect
	Messages []port.StatusMessage
	Adds     int
	Removes  int
}

var _ port.WindowHost = (*Host)(nil)

// NewHost returns a host with a 1000x800 content area.
func NewHost() *Host {
	return &Host{Rect: entity.Rect{Width: 1000, Height: 800}}
}

func (h *Host) AddSurface(content port.Content) {
	h.Adds++
	for _, c := range h.Attached {
		if c == content {
			return
		}
	}
	h.Attached = append(h.Attached, content)
}

func (h *Host) RemoveSurface(content port.Content) {
	h.Removes++
	for i, c := range h.Attached {
		if c == content {
			h.Attached = append(h.Attached[:i], h.Attached[i+1:]...)
			break
		}
	}
	if h.Top == content {
		h.Top = nil
	}
}

func (h *Host) SetTopSurface(content port.Content) { h.Top = content }
func (h *Host) ContentBounds() entity.Rect         { return h.Rect }
func (h *Host) Send(msg port.StatusMessage)        { h.Messages = append(h.Messages, msg) }

// OfKind returns the status messages of kind, in order.
func (h *Host) OfKind(kind port.StatusKind) []port.StatusMessage {
	var out []port.StatusMessage
	for _, m := range h.Messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// Overlay is a port.LoadingOverlay counting calls.
type Overlay struct {
	Shows  int
	Fades  int
	Hides  int
	Bounds entity.Rect
	Dark   bool
}

var _ port.LoadingOverlay = (*Overlay)(nil)

func (o *Overlay) Show()                      { o.Shows++ }
func (o *Overlay) StartFade()                 { o.Fades++ }
func (o *Overlay) Hide()                      { o.Hides++ }
func (o *Overlay) SetBounds(rect entity.Rect) { o.Bounds = rect }
func (o *Overlay) SetDarkMode(dark bool)      { o.Dark = dark }
