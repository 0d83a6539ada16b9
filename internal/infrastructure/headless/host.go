package headless

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
)

// DefaultBounds is the drawable area of a headless window.
var DefaultBounds = entity.Rect{Width: 1280, Height: 800}

// Host is a port.WindowHost that keeps the surface stack in memory and
// logs every status update.
type Host struct {
	log zerolog.Logger

	mu       sync.Mutex
	surfaces []port.Content
	bounds   entity.Rect
	onStatus []func(port.StatusMessage)
}

var _ port.WindowHost = (*Host)(nil)

// NewHost creates a host with DefaultBounds.
func NewHost(ctx context.Context) *Host {
	return &Host{
		log:    logging.FromContext(ctx).With().Str("component", "window").Logger(),
		bounds: DefaultBounds,
	}
}

// OnStatus registers fn for every status update. Callbacks run on the
// caller's goroutine, which is the main loop.
func (h *Host) OnStatus(fn func(port.StatusMessage)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStatus = append(h.onStatus, fn)
}

func (h *Host) AddSurface(content port.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if slices.Contains(h.surfaces, content) {
		return
	}
	h.surfaces = append(h.surfaces, content)
}

func (h *Host) RemoveSurface(content port.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = slices.DeleteFunc(h.surfaces, func(c port.Content) bool { return c == content })
}

// SetTopSurface moves content to the top of the stack, attaching it if needed.
func (h *Host) SetTopSurface(content port.Content) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = slices.DeleteFunc(h.surfaces, func(c port.Content) bool { return c == content })
	h.surfaces = append(h.surfaces, content)
}

// Top returns the topmost surface or nil.
func (h *Host) Top() port.Content {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.surfaces) == 0 {
		return nil
	}
	return h.surfaces[len(h.surfaces)-1]
}

// SurfaceCount returns the number of attached surfaces.
func (h *Host) SurfaceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

func (h *Host) ContentBounds() entity.Rect {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bounds
}

// Resize changes the drawable area. The caller forwards it to the
// window coordinator.
func (h *Host) Resize(rect entity.Rect) {
	h.mu.Lock()
	h.bounds = rect
	h.mu.Unlock()
}

func (h *Host) Send(msg port.StatusMessage) {
	ev := h.log.Debug()
	switch msg.Kind {
	case port.StatusLoadFailed, port.StatusIncompatibleServer, port.StatusNoMatchingServer:
		ev = h.log.Warn()
	case port.StatusActiveViewChanged, port.StatusLoadSuccess:
		ev = h.log.Info()
	}
	ev = ev.Str("kind", string(msg.Kind)).
		Str("server_id", string(msg.ServerID)).
		Str("tab_id", string(msg.TabID))
	if msg.URL != "" {
		ev = ev.Str("url", msg.URL)
	}
	if msg.Title != "" {
		ev = ev.Str("title", msg.Title)
	}
	if !msg.RetryAt.IsZero() {
		ev = ev.Time("retry_at", msg.RetryAt)
	}
	if msg.Err != nil {
		ev = ev.Err(msg.Err)
	}
	ev.Msg("status")

	h.mu.Lock()
	callbacks := slices.Clone(h.onStatus)
	h.mu.Unlock()
	for _, fn := range callbacks {
		fn(msg)
	}
}
