// Package view implements the per-tab content surface and its
// load/retry/status state machine.
package view

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
	"github.com/bnema/deskview/internal/logging"
)

const (
	// ChannelHistoryPush asks the embedded app to navigate in place.
	ChannelHistoryPush = "browser-history-push"
	// ChannelHistoryStatus carries back/forward availability.
	ChannelHistoryStatus = "browser-history-status-updated"
)

// Config holds the state machine timings.
type Config struct {
	RetryInterval        time.Duration
	MaxRetries           int
	LoadingScreenTimeout time.Duration
	ProbeInterval        time.Duration
	MinimumServerVersion string
	UserAgent            string
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		RetryInterval:        10 * time.Second,
		MaxRetries:           3,
		LoadingScreenTimeout: 15 * time.Second,
		ProbeInterval:        60 * time.Second,
		MinimumServerVersion: entity.DefaultMinimumServerVersion,
	}
}

// RemoteInfoStore is the part of the server registry a surface reads and
// feeds with probe results.
type RemoteInfoStore interface {
	RemoteInfo(serverID entity.ServerID) (entity.RemoteInfo, bool)
	UpdateRemoteInfo(ctx context.Context, serverID entity.ServerID, info entity.RemoteInfo) error
}

// Deps are the collaborators of a surface.
type Deps struct {
	Host       port.WindowHost
	Scheduler  port.Scheduler
	Dispatcher port.Dispatcher
	Fetcher    port.ServerInfoFetcher // optional; no background probing without it
	Remote     RemoteInfoStore
	Sink       Sink
}

// HistoryStatus is the back/forward availability sent to the shell.
type HistoryStatus struct {
	CanGoBack    bool `json:"canGoBack"`
	CanGoForward bool `json:"canGoForward"`
}

// Surface is one content surface bound to one tab. All methods must be
// called on the main loop.
type Surface struct {
	ctx    context.Context
	cancel context.CancelFunc

	server  *entity.Server
	tab     *entity.Tab
	content port.Content
	deps    Deps
	cfg     Config

	status      entity.ViewStatus
	retriesLeft int
	generation  uint64
	loadURL     string
	loadCancel  context.CancelFunc

	retryTimer    port.Timer
	fallbackTimer port.Timer
	probeTimer    port.Timer

	attached  bool
	isVisible bool
	loggedIn  bool
	isAtRoot  bool
	destroyed bool

	bounds  entity.Rect
	title   string
	cookies *cookieJar
}

// New binds content to tab. The surface starts in LOADING; nothing is
// requested until Load is called.
func New(
	ctx context.Context,
	server *entity.Server,
	tab *entity.Tab,
	content port.Content,
	deps Deps,
	cfg Config,
) *Surface {
	ctx = logging.WithTabID(logging.WithServerID(ctx, string(server.ID)), string(tab.ID))
	ctx, cancel := context.WithCancel(ctx)

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.MinimumServerVersion == "" {
		cfg.MinimumServerVersion = entity.DefaultMinimumServerVersion
	}

	return &Surface{
		ctx:         ctx,
		cancel:      cancel,
		server:      server.Clone(),
		tab:         tab.Clone(),
		content:     content,
		deps:        deps,
		cfg:         cfg,
		status:      entity.ViewLoading,
		retriesLeft: cfg.MaxRetries,
		cookies:     newCookieJar(server.URL.Host),
	}
}

// TabID returns the id of the bound tab.
func (s *Surface) TabID() entity.TabID { return s.tab.ID }

// Tab returns a copy of the bound tab.
func (s *Surface) Tab() *entity.Tab { return s.tab.Clone() }

// Server returns a copy of the bound server.
func (s *Surface) Server() *entity.Server { return s.server.Clone() }

// Status returns the current state.
func (s *Surface) Status() entity.ViewStatus { return s.status }

// IsReady reports whether the surface reached READY.
func (s *Surface) IsReady() bool { return s.status == entity.ViewReady }

// IsErrored reports whether the surface is in ERROR.
func (s *Surface) IsErrored() bool { return s.status == entity.ViewError }

// NeedsLoadingScreen reports whether the overlay should cover this surface.
func (s *Surface) NeedsLoadingScreen() bool { return s.status.NeedsLoadingScreen() }

// IsVisible reports whether the surface is the one on screen.
func (s *Surface) IsVisible() bool { return s.isVisible }

// IsLoggedIn reports the last login state signalled by the app.
func (s *Surface) IsLoggedIn() bool { return s.loggedIn }

// IsAtRoot reports whether the current URL is the tab's loading URL.
func (s *Surface) IsAtRoot() bool { return s.isAtRoot }

// RetriesLeft returns the remaining retry budget.
func (s *Surface) RetriesLeft() int { return s.retriesLeft }

// MaxRetries returns the configured retry budget.
func (s *Surface) MaxRetries() int { return s.cfg.MaxRetries }

// Title returns the last page title with the mention prefix removed.
func (s *Surface) Title() string { return s.title }

// Content exposes the engine surface to the window host wiring.
func (s *Surface) Content() port.Content { return s.content }

// IsDestroyed reports whether Destroy ran or the engine lost the content.
func (s *Surface) IsDestroyed() bool {
	return s.destroyed || s.content.IsDestroyed()
}

// CurrentURL returns the engine's current URL.
func (s *Surface) CurrentURL() string {
	if s.destroyed {
		return ""
	}
	return s.content.CurrentURL()
}

// LoadingURL is the canonical URL of the tab.
func (s *Surface) LoadingURL() string {
	u := s.tab.URL(s.server)
	if u == nil {
		return ""
	}
	return u.String()
}

// Load starts a fresh load cycle at rawURL, or at the tab URL when empty.
func (s *Surface) Load(rawURL string) {
	if s.destroyed {
		return
	}
	s.cancelTimers()
	s.retriesLeft = s.cfg.MaxRetries
	s.startLoad(rawURL)
}

// Reload resets to LOADING from any state. Pending timers are cancelled
// and in-flight completions become stale before the new load is issued.
func (s *Surface) Reload(rawURL string) {
	log := logging.FromContext(s.ctx)
	log.Debug().Str("from", s.status.String()).Msg("reloading surface")
	s.Load(rawURL)
}

func (s *Surface) startLoad(rawURL string) {
	if rawURL == "" {
		rawURL = s.LoadingURL()
	}
	s.generation++
	gen := s.generation
	s.status = entity.ViewLoading
	s.loadURL = rawURL

	if s.loadCancel != nil {
		s.loadCancel()
	}
	loadCtx, cancel := context.WithCancel(s.ctx)
	s.loadCancel = cancel

	log := logging.FromContext(s.ctx)
	log.Debug().Str("url", rawURL).Uint64("generation", gen).Int("retries_left", s.retriesLeft).Msg("loading")

	header := make(http.Header)
	if s.cfg.UserAgent != "" {
		header.Set("User-Agent", s.cfg.UserAgent)
	}
	s.AppendCookies(header)

	req := port.LoadRequest{
		URL:    rawURL,
		Header: header,
		OnResponse: func(h http.Header) {
			h = h.Clone()
			s.deps.Dispatcher.Post(func() {
				if !s.destroyed {
					s.ExtractCookies(h)
				}
			})
		},
	}
	s.content.LoadURL(loadCtx, req, func(err error) {
		s.deps.Dispatcher.Post(func() {
			s.onLoadDone(gen, rawURL, err)
		})
	})
}

func (s *Surface) stale(gen uint64) bool {
	return s.destroyed || gen != s.generation
}

func (s *Surface) onLoadDone(gen uint64, loadURL string, err error) {
	log := logging.FromContext(s.ctx)
	if s.stale(gen) {
		log.Debug().Uint64("generation", gen).Msg("dropping stale load completion")
		return
	}
	if err == nil {
		s.loadSuccess(loadURL)
		return
	}

	switch entity.ClassifyLoadError(err) {
	case entity.LoadErrorAborted:
		log.Debug().Err(err).Msg("load aborted, ignoring")
	case entity.LoadErrorCertificate:
		log.Warn().Err(err).Msg("certificate error, waiting for the user")
		s.fail(loadURL, err)
	case entity.LoadErrorOther:
		s.retriesLeft--
		if s.retriesLeft > 0 {
			s.scheduleRetry(loadURL, err)
			return
		}
		log.Error().Err(err).Msg("retry budget exhausted")
		s.fail(loadURL, err)
		s.scheduleProbe()
	}
}

func (s *Surface) scheduleRetry(loadURL string, err error) {
	log := logging.FromContext(s.ctx)
	gen := s.generation
	s.stopTimer(&s.retryTimer)
	s.retryTimer = s.deps.Scheduler.AfterFunc(s.cfg.RetryInterval, func() {
		s.retryTimer = nil
		if s.stale(gen) || s.status != entity.ViewLoading {
			return
		}
		s.startLoad(loadURL)
	})

	retryAt := s.deps.Scheduler.Now().Add(s.cfg.RetryInterval)
	log.Info().
		Err(err).
		Int("retries_left", s.retriesLeft).
		Time("retry_at", retryAt).
		Msg("load failed, retrying")
	s.emit(LoadRetry{TabID: s.tab.ID, URL: loadURL, RetryAt: retryAt, Err: err})
}

func (s *Surface) fail(loadURL string, err error) {
	s.cancelTimers()
	s.status = entity.ViewError
	s.emit(LoadFailed{TabID: s.tab.ID, URL: loadURL, Err: err})
}

func (s *Surface) loadSuccess(loadURL string) {
	log := logging.FromContext(s.ctx)
	if s.status != entity.ViewLoading {
		return
	}

	if info, ok := s.remoteInfo(); ok && !info.VersionAtLeast(s.cfg.MinimumServerVersion) {
		log.Warn().
			Str("server_version", info.ServerVersion).
			Str("minimum", s.cfg.MinimumServerVersion).
			Msg("incompatible server version")
		s.cancelTimers()
		s.status = entity.ViewError
		s.emit(IncompatibleServer{TabID: s.tab.ID, ServerVersion: info.ServerVersion})
		return
	}

	s.status = entity.ViewWaitingForAppReady
	s.retriesLeft = s.cfg.MaxRetries
	s.updateIsAtRoot()

	gen := s.generation
	s.stopTimer(&s.fallbackTimer)
	s.fallbackTimer = s.deps.Scheduler.AfterFunc(s.cfg.LoadingScreenTimeout, func() {
		s.fallbackTimer = nil
		if s.stale(gen) {
			return
		}
		s.SetInitialized(true)
	})

	log.Info().Str("url", loadURL).Msg("load succeeded, waiting for app")
	s.emit(LoadSuccess{TabID: s.tab.ID, URL: loadURL})
}

func (s *Surface) remoteInfo() (entity.RemoteInfo, bool) {
	if s.deps.Remote == nil {
		return entity.RemoteInfo{}, false
	}
	return s.deps.Remote.RemoteInfo(s.server.ID)
}

// SetInitialized promotes the surface to READY. timedOut marks promotion
// by the fallback timer instead of the app signal.
func (s *Surface) SetInitialized(timedOut bool) {
	log := logging.FromContext(s.ctx)
	if s.destroyed {
		return
	}
	if s.status != entity.ViewWaitingForAppReady && s.status != entity.ViewLoading {
		log.Debug().Str("status", s.status.String()).Msg("initialized signal ignored")
		return
	}

	s.cancelTimers()
	s.status = entity.ViewReady
	if timedOut {
		log.Warn().Dur("timeout", s.cfg.LoadingScreenTimeout).Msg("app never signalled ready, forcing")
	} else {
		log.Info().Msg("app initialized")
	}
	s.emit(LoadscreenEnd{TabID: s.tab.ID, TimedOut: timedOut})
}

func (s *Surface) scheduleProbe() {
	log := logging.FromContext(s.ctx)
	if s.deps.Fetcher == nil {
		log.Debug().Msg("no server info fetcher, background probing disabled")
		return
	}
	gen := s.generation
	s.stopTimer(&s.probeTimer)
	s.probeTimer = s.deps.Scheduler.AfterFunc(s.cfg.ProbeInterval, func() {
		s.probeTimer = nil
		if s.stale(gen) {
			return
		}
		s.probe(gen)
	})
}

func (s *Surface) probe(gen uint64) {
	ctx := s.ctx
	serverURL := s.server.URLString()
	fetcher := s.deps.Fetcher

	s.deps.Dispatcher.Background(func() {
		info, err := fetcher.FetchServerInfo(ctx, serverURL)
		s.deps.Dispatcher.Post(func() {
			s.onProbeResult(gen, info, err)
		})
	})
}

func (s *Surface) onProbeResult(gen uint64, info entity.RemoteInfo, err error) {
	log := logging.FromContext(s.ctx)
	if s.stale(gen) || s.status != entity.ViewError {
		return
	}
	if err != nil {
		log.Debug().Err(err).Dur("next_in", s.cfg.ProbeInterval).Msg("server still unreachable")
		s.scheduleProbe()
		return
	}

	log.Info().Str("server_version", info.ServerVersion).Msg("server reachable again, reloading")
	if s.deps.Remote != nil {
		if err := s.deps.Remote.UpdateRemoteInfo(s.ctx, s.server.ID, info); err != nil {
			log.Warn().Err(err).Msg("failed to store probed server info")
		}
	}
	// storing the info may already have reloaded this surface
	if s.stale(gen) {
		return
	}
	s.Reload("")
}

// Destroy cancels every timer, detaches from the host and releases the
// engine content. The surface is unusable afterwards.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	log := logging.FromContext(s.ctx)

	s.cancelTimers()
	s.generation++
	s.destroyed = true
	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
	s.detach()
	s.isVisible = false
	if !s.content.IsDestroyed() {
		s.content.Close()
	}
	s.cancel()
	log.Debug().Msg("surface destroyed")
}

func (s *Surface) cancelTimers() {
	s.stopTimer(&s.retryTimer)
	s.stopTimer(&s.fallbackTimer)
	s.stopTimer(&s.probeTimer)
}

func (s *Surface) stopTimer(t *port.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// PendingTimers returns how many deferred tasks the surface holds.
func (s *Surface) PendingTimers() int {
	n := 0
	for _, t := range []port.Timer{s.retryTimer, s.fallbackTimer, s.probeTimer} {
		if t != nil {
			n++
		}
	}
	return n
}

// Show attaches the surface and raises it above the others.
func (s *Surface) Show() {
	if s.destroyed {
		return
	}
	if !s.attached {
		s.deps.Host.AddSurface(s.content)
		s.attached = true
	}
	s.deps.Host.SetTopSurface(s.content)
	s.isVisible = true
}

// Hide detaches the surface from the window.
func (s *Surface) Hide() {
	s.detach()
	s.isVisible = false
}

func (s *Surface) detach() {
	if s.attached {
		s.deps.Host.RemoveSurface(s.content)
		s.attached = false
	}
}

// SetBounds positions the content.
func (s *Surface) SetBounds(rect entity.Rect) {
	if s.destroyed {
		return
	}
	s.bounds = rect
	s.content.SetBounds(rect)
}

// Bounds returns the last applied bounds.
func (s *Surface) Bounds() entity.Rect { return s.bounds }

// Focus gives keyboard focus to the content.
func (s *Surface) Focus() {
	if s.destroyed {
		return
	}
	s.content.Focus()
}

// SendToRenderer forwards a message to the embedded app.
func (s *Surface) SendToRenderer(channel string, payload any) {
	if s.destroyed {
		return
	}
	if err := s.content.Send(channel, payload); err != nil {
		logging.FromContext(s.ctx).Warn().Err(err).Str("channel", channel).Msg("failed to send to renderer")
	}
}

// UpdateServer rebinds the surface to a new copy of its server. A changed
// base URL reloads the surface at the new tab URL.
func (s *Surface) UpdateServer(server *entity.Server) {
	if server == nil || server.ID != s.server.ID {
		return
	}
	urlChanged := server.URLString() != s.server.URLString()
	s.server = server.Clone()
	if !urlChanged {
		return
	}
	logging.FromContext(s.ctx).Info().Str("url", server.URLString()).Msg("server url changed, reloading")
	s.cookies.rebind(server.URL.Host)
	s.Reload("")
}

// UpdateTab refreshes tab metadata such as order. Identity never changes.
func (s *Surface) UpdateTab(tab *entity.Tab) {
	if tab == nil || tab.ID != s.tab.ID {
		return
	}
	s.tab = tab.Clone()
}

// OnLogin records the login state. Becoming logged in while displaying a
// page outside the tab, or no page yet, reloads the tab. Re-auth on its own
// pages does not.
func (s *Surface) OnLogin(loggedIn bool) {
	if s.loggedIn == loggedIn {
		return
	}
	s.loggedIn = loggedIn
	if !loggedIn {
		return
	}

	current := s.CurrentURL()
	target := s.LoadingURL()
	if current != "" && (urlutil.Equivalent(current, target) || strings.HasPrefix(current, target)) {
		return
	}
	logging.FromContext(s.ctx).Info().Str("current", current).Msg("logged in from another page, reloading")
	s.Reload("")
}

func (s *Surface) updateIsAtRoot() {
	s.isAtRoot = urlutil.Equivalent(s.CurrentURL(), s.LoadingURL())
}

// BrowserHistoryStatus refreshes IsAtRoot, clears history when at the tab
// root and reports back/forward availability.
func (s *Surface) BrowserHistoryStatus() HistoryStatus {
	if s.destroyed {
		return HistoryStatus{}
	}
	s.updateIsAtRoot()
	if s.isAtRoot {
		s.content.ClearHistory()
	}
	return HistoryStatus{
		CanGoBack:    s.content.CanGoBack(),
		CanGoForward: s.content.CanGoForward(),
	}
}

// UpdateHistoryButton pushes the history status to the embedded app.
func (s *Surface) UpdateHistoryButton() {
	if s.destroyed {
		return
	}
	s.SendToRenderer(ChannelHistoryStatus, s.BrowserHistoryStatus())
}

// GoToOffset navigates history. A failed navigation reloads the tab.
func (s *Surface) GoToOffset(offset int) {
	if s.destroyed {
		return
	}
	if err := s.content.GoToOffset(offset); err != nil {
		logging.FromContext(s.ctx).Warn().Err(err).Int("offset", offset).Msg("history navigation failed, reloading")
		s.Reload("")
		return
	}
	s.UpdateHistoryButton()
}

var mentionPrefix = regexp.MustCompile(`^\((\d+)\)\s*`)

// UpdateTitle records a page title and emits TitleChanged. A "(n) "
// prefix is the mention count and a leading "* " marks unread content;
// both are stripped from the stored title.
func (s *Surface) UpdateTitle(title string) {
	mentions := 0
	if m := mentionPrefix.FindStringSubmatch(title); m != nil {
		mentions, _ = strconv.Atoi(m[1])
		title = title[len(m[0]):]
	}
	title = strings.TrimPrefix(title, "* ")
	s.title = title
	s.emit(TitleChanged{TabID: s.tab.ID, Title: title, Mentions: mentions})
}

// UpdateTargetURL reports the hovered link. Links inside the server are
// reported as empty.
func (s *Surface) UpdateTargetURL(raw string) {
	shown := raw
	if raw != "" {
		if target, err := urlutil.Parse(raw); err == nil && urlutil.IsInternalURL(target, s.server.URL) {
			shown = ""
		}
	}
	s.emit(TargetURLChanged{TabID: s.tab.ID, URL: shown})
}

// SetCookie stores a raw Set-Cookie value. Cookies for other hosts are
// rejected.
func (s *Surface) SetCookie(raw string) bool {
	c, err := http.ParseSetCookie(raw)
	if err != nil {
		logging.FromContext(s.ctx).Debug().Err(err).Msg("ignoring malformed cookie")
		return false
	}
	return s.cookies.set(c)
}

// ExtractCookies captures every Set-Cookie of an inbound response.
func (s *Surface) ExtractCookies(header http.Header) {
	for _, raw := range header.Values("Set-Cookie") {
		s.SetCookie(raw)
	}
}

// AppendCookies adds the snapshot to an outgoing request header.
func (s *Surface) AppendCookies(header http.Header) {
	cookies := s.cookies.list()
	if len(cookies) == 0 {
		return
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}
	if existing := header.Get("Cookie"); existing != "" {
		parts = append([]string{existing}, parts...)
	}
	header.Set("Cookie", strings.Join(parts, "; "))
}

// Cookies returns the snapshot sorted by name.
func (s *Surface) Cookies() []*http.Cookie {
	return s.cookies.list()
}

func (s *Surface) emit(ev Event) {
	if s.deps.Sink == nil {
		return
	}
	s.deps.Sink.Dispatch(s.ctx, ev)
}
