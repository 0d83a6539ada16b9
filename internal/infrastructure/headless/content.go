// Package headless provides an engine adapter without a GUI toolkit.
// Surfaces "load" a URL with an HTTP GET, keep an in-memory history, and
// treat history pushes as in-app navigation.
package headless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
)

const (
	loadTimeout = 30 * time.Second

	channelHistoryPush = "browser-history-push"

	// maxDrainBytes is read from each body so connections can be reused.
	maxDrainBytes = 64 << 10
)

// Message is one payload delivered to a surface.
type Message struct {
	Channel string
	Payload any
}

// Content is a headless port.Content.
type Content struct {
	serverID entity.ServerID
	tabID    entity.TabID
	client   *http.Client

	mu        sync.Mutex
	history   []string
	index     int
	bounds    entity.Rect
	messages  []Message
	destroyed bool
}

var _ port.Content = (*Content)(nil)

// LoadURL fetches req.URL in the background and reports through done.
func (c *Content) LoadURL(ctx context.Context, req port.LoadRequest, done func(error)) {
	rawURL := req.URL
	log := logging.FromContext(ctx).With().
		Str("server_id", string(c.serverID)).
		Str("tab_id", string(c.tabID)).
		Str("url", rawURL).
		Logger()

	go func() {
		finalURL, err := c.fetch(ctx, req)
		if err != nil {
			var loadErr *entity.LoadError
			if !errors.As(err, &loadErr) {
				loadErr = ClassifyError(rawURL, err)
			}
			log.Debug().Err(err).Str("code", loadErr.Code).Msg("headless load failed")
			done(loadErr)
			return
		}

		c.mu.Lock()
		c.pushLocked(finalURL)
		c.mu.Unlock()

		log.Debug().Str("final_url", finalURL).Msg("headless load finished")
		done(nil)
	}()
}

func (c *Content) fetch(ctx context.Context, load port.LoadRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	rawURL := load.URL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", err
	}
	for name, values := range load.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))

	if load.OnResponse != nil {
		load.OnResponse(resp.Header)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", statusError(rawURL, resp.StatusCode)
	}
	return resp.Request.URL.String(), nil
}

func (c *Content) pushLocked(u string) {
	if len(c.history) > 0 && c.history[c.index] == u {
		return
	}
	if len(c.history) > 0 {
		c.history = c.history[:c.index+1]
	}
	c.history = append(c.history, u)
	c.index = len(c.history) - 1
}

// CurrentURL returns the URL at the current history position.
func (c *Content) CurrentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return ""
	}
	return c.history[c.index]
}

func (c *Content) CanGoBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index > 0
}

func (c *Content) CanGoForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index < len(c.history)-1
}

// ClearHistory keeps only the current entry.
func (c *Content) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return
	}
	c.history = []string{c.history[c.index]}
	c.index = 0
}

func (c *Content) GoToOffset(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.index + offset
	if target < 0 || target >= len(c.history) {
		return fmt.Errorf("history offset %d out of range", offset)
	}
	c.index = target
	return nil
}

// Send records the message. A history push navigates in place relative
// to the current URL.
func (c *Content) Send(channel string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return fmt.Errorf("send on %s: surface destroyed", channel)
	}
	c.messages = append(c.messages, Message{Channel: channel, Payload: payload})

	if channel != channelHistoryPush || len(c.history) == 0 {
		return nil
	}
	path, ok := payload.(string)
	if !ok {
		return fmt.Errorf("history push payload is %T, want string", payload)
	}
	base, err := url.Parse(c.history[c.index])
	if err != nil {
		return err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return err
	}
	c.pushLocked(base.ResolveReference(ref).String())
	return nil
}

// Messages returns a copy of every delivered message.
func (c *Content) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Content) SetBounds(rect entity.Rect) {
	c.mu.Lock()
	c.bounds = rect
	c.mu.Unlock()
}

// Bounds returns the last bounds set.
func (c *Content) Bounds() entity.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

func (c *Content) Focus() {}

func (c *Content) Close() {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
}

func (c *Content) IsDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Factory creates headless surfaces sharing one HTTP client.
type Factory struct {
	client *http.Client
}

var _ port.ContentFactory = (*Factory)(nil)

// NewFactory creates a Factory. A nil client gets http.DefaultTransport
// without a global timeout; each load is bounded separately.
func NewFactory(client *http.Client) *Factory {
	if client == nil {
		client = &http.Client{}
	}
	return &Factory{client: client}
}

func (f *Factory) NewContent(ctx context.Context, serverID entity.ServerID, tabID entity.TabID) (port.Content, error) {
	logging.FromContext(ctx).Debug().
		Str("server_id", string(serverID)).
		Str("tab_id", string(tabID)).
		Msg("creating headless surface")
	return &Content{serverID: serverID, tabID: tabID, client: f.client}, nil
}
