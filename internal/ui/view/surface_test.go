package view_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portmocks "github.com/bnema/deskview/internal/application/port/mocks"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/mainloop/mainlooptest"
	"github.com/bnema/deskview/internal/ui/view"
	"github.com/bnema/deskview/internal/ui/view/viewtest"
)

type remoteStore struct {
	infos   map[entity.ServerID]entity.RemoteInfo
	updates []entity.RemoteInfo
}

func (r *remoteStore) RemoteInfo(id entity.ServerID) (entity.RemoteInfo, bool) {
	info, ok := r.infos[id]
	return info, ok
}

func (r *remoteStore) UpdateRemoteInfo(_ context.Context, id entity.ServerID, info entity.RemoteInfo) error {
	r.infos[id] = info
	r.updates = append(r.updates, info)
	return nil
}

type harness struct {
	loop    *mainlooptest.Loop
	host    *viewtest.Host
	content *viewtest.Content
	remote  *remoteStore
	events  []view.Event
	surface *view.Surface
	cfg     view.Config
}

func testCtx() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromConfigValues("debug", "console"))
}

func newHarness(t *testing.T, fetcher *portmocks.MockServerInfoFetcher) *harness {
	t.Helper()
	srv, err := entity.NewServer("srv-1", "chat", "https://chat.example.com/sub", false)
	require.NoError(t, err)
	tab := &entity.Tab{ID: "tab-1", ServerID: srv.ID, Kind: entity.TabKindMessaging, IsOpen: true}

	h := &harness{
		loop:    mainlooptest.New(),
		host:    viewtest.NewHost(),
		content: &viewtest.Content{ServerID: srv.ID, TabID: tab.ID},
		remote:  &remoteStore{infos: map[entity.ServerID]entity.RemoteInfo{}},
		cfg:     view.DefaultConfig(),
	}
	deps := view.Deps{
		Host:       h.host,
		Scheduler:  h.loop,
		Dispatcher: h.loop,
		Remote:     h.remote,
		Sink: view.SinkFunc(func(_ context.Context, ev view.Event) {
			h.events = append(h.events, ev)
		}),
	}
	if fetcher != nil {
		deps.Fetcher = fetcher
	}
	h.surface = view.New(testCtx(), srv, tab, h.content, deps, h.cfg)
	return h
}

func eventsOf[T view.Event](events []view.Event) []T {
	var out []T
	for _, ev := range events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func TestSurface_LoadSuccessWaitsForApp(t *testing.T) {
	h := newHarness(t, nil)

	h.surface.Load("")
	require.Len(t, h.content.Loads, 1)
	assert.Equal(t, "https://chat.example.com/sub/", h.content.LastLoad().URL)
	assert.Equal(t, entity.ViewLoading, h.surface.Status())

	h.content.Succeed()
	assert.Equal(t, entity.ViewWaitingForAppReady, h.surface.Status())
	assert.True(t, h.surface.IsAtRoot())
	require.Len(t, eventsOf[view.LoadSuccess](h.events), 1)

	pending := h.loop.Pending()
	require.Len(t, pending, 1, "only the fallback timer is armed")
	assert.Equal(t, h.cfg.LoadingScreenTimeout, pending[0].Delay())

	h.surface.SetInitialized(false)
	assert.Equal(t, entity.ViewReady, h.surface.Status())
	assert.Empty(t, h.loop.Pending(), "app signal cancels the fallback timer")
	ends := eventsOf[view.LoadscreenEnd](h.events)
	require.Len(t, ends, 1)
	assert.False(t, ends[0].TimedOut)
}

func TestSurface_FallbackTimerForcesReady(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	h.content.Succeed()

	h.loop.Advance(h.cfg.LoadingScreenTimeout)

	assert.Equal(t, entity.ViewReady, h.surface.Status())
	ends := eventsOf[view.LoadscreenEnd](h.events)
	require.Len(t, ends, 1)
	assert.True(t, ends[0].TimedOut)

	h.surface.SetInitialized(false)
	assert.Len(t, eventsOf[view.LoadscreenEnd](h.events), 1, "late app signal is ignored once ready")
}

func TestSurface_RetryBudgetExhaustion(t *testing.T) {
	fetcher := portmocks.NewMockServerInfoFetcher(t)
	h := newHarness(t, fetcher)
	h.surface.Load("")

	for attempt := 1; attempt < h.cfg.MaxRetries; attempt++ {
		h.content.Fail(entity.LoadErrorOther)
		assert.Equal(t, entity.ViewLoading, h.surface.Status(), "attempt %d", attempt)
		pending := h.loop.Pending()
		require.Len(t, pending, 1)
		assert.Equal(t, h.cfg.RetryInterval, pending[0].Delay())
		h.loop.Advance(h.cfg.RetryInterval)
	}
	require.Len(t, h.content.Loads, h.cfg.MaxRetries)

	h.content.Fail(entity.LoadErrorOther)
	assert.Equal(t, entity.ViewError, h.surface.Status())
	assert.Len(t, eventsOf[view.LoadRetry](h.events), h.cfg.MaxRetries-1)
	assert.Len(t, eventsOf[view.LoadFailed](h.events), 1)

	pending := h.loop.Pending()
	require.Len(t, pending, 1, "only the background probe is armed")
	assert.Equal(t, h.cfg.ProbeInterval, pending[0].Delay())
	assert.Greater(t, h.cfg.ProbeInterval, h.cfg.RetryInterval)
}

func TestSurface_BackgroundProbe(t *testing.T) {
	exhaust := func(h *harness) {
		h.surface.Load("")
		for i := 0; i < h.cfg.MaxRetries; i++ {
			h.content.Fail(entity.LoadErrorOther)
			if i < h.cfg.MaxRetries-1 {
				h.loop.Advance(h.cfg.RetryInterval)
			}
		}
	}

	t.Run("failure re-arms probe", func(t *testing.T) {
		fetcher := portmocks.NewMockServerInfoFetcher(t)
		fetcher.EXPECT().
			FetchServerInfo(mock.Anything, "https://chat.example.com/sub/").
			Return(entity.RemoteInfo{}, errors.New("connection refused")).
			Once()
		h := newHarness(t, fetcher)
		exhaust(h)

		h.loop.Advance(h.cfg.ProbeInterval)

		assert.Equal(t, entity.ViewError, h.surface.Status())
		require.Len(t, h.loop.Pending(), 1)
		assert.Equal(t, h.cfg.ProbeInterval, h.loop.Pending()[0].Delay())
		assert.Len(t, h.content.Loads, h.cfg.MaxRetries)
	})

	t.Run("success stores info and reloads silently", func(t *testing.T) {
		fetcher := portmocks.NewMockServerInfoFetcher(t)
		info := entity.RemoteInfo{ServerVersion: "9.11.0"}
		fetcher.EXPECT().FetchServerInfo(mock.Anything, mock.Anything).Return(info, nil).Once()
		h := newHarness(t, fetcher)
		exhaust(h)

		h.loop.Advance(h.cfg.ProbeInterval)

		assert.Equal(t, []entity.RemoteInfo{info}, h.remote.updates)
		assert.Equal(t, entity.ViewLoading, h.surface.Status())
		assert.Len(t, h.content.Loads, h.cfg.MaxRetries+1)

		h.content.Succeed()
		assert.Equal(t, entity.ViewWaitingForAppReady, h.surface.Status())
	})
}

func TestSurface_CertificateErrorIsFatal(t *testing.T) {
	h := newHarness(t, portmocks.NewMockServerInfoFetcher(t))
	h.surface.Load("")

	h.content.Fail(entity.LoadErrorCertificate)

	assert.Equal(t, entity.ViewError, h.surface.Status())
	assert.Empty(t, h.loop.Pending(), "no retry and no probe")
	failed := eventsOf[view.LoadFailed](h.events)
	require.Len(t, failed, 1)
	assert.Equal(t, entity.LoadErrorCertificate, entity.ClassifyLoadError(failed[0].Err))
}

func TestSurface_AbortedLoadIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")

	h.content.Fail(entity.LoadErrorAborted)

	assert.Equal(t, entity.ViewLoading, h.surface.Status())
	assert.Empty(t, h.loop.Pending())
	assert.Empty(t, h.events)
	assert.Equal(t, h.cfg.MaxRetries, h.surface.RetriesLeft())
}

func TestSurface_IncompatibleServer(t *testing.T) {
	h := newHarness(t, portmocks.NewMockServerInfoFetcher(t))
	h.remote.infos["srv-1"] = entity.RemoteInfo{ServerVersion: "9.3.1"}
	h.surface.Load("")

	h.content.Succeed()

	assert.Equal(t, entity.ViewError, h.surface.Status())
	assert.Empty(t, h.loop.Pending())
	inc := eventsOf[view.IncompatibleServer](h.events)
	require.Len(t, inc, 1)
	assert.Equal(t, "9.3.1", inc[0].ServerVersion)
	assert.Empty(t, eventsOf[view.LoadSuccess](h.events))
}

func TestSurface_ReloadCancelsPendingRetry(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	first := h.content.LastLoad()
	h.content.Fail(entity.LoadErrorOther)
	require.Len(t, h.loop.Pending(), 1)

	h.surface.Reload("")
	assert.Empty(t, h.loop.Pending(), "reload clears the retry timer")
	require.Len(t, h.content.Loads, 2)

	h.loop.Advance(h.cfg.RetryInterval * 2)
	assert.Len(t, h.content.Loads, 2, "stale retry never fires")

	// a superseded completion is dropped
	h.content.Complete(first, nil)
	assert.Equal(t, entity.ViewLoading, h.surface.Status())
}

func TestSurface_ReloadSequencesNeverStackTimers(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")

	steps := []func(){
		func() { h.content.Fail(entity.LoadErrorOther) },
		func() { h.surface.Reload("") },
		func() { h.content.Succeed() },
		func() { h.surface.Reload("") },
		func() { h.content.Succeed() },
		func() { h.surface.SetInitialized(false) },
		func() { h.surface.Reload("") },
		func() { h.content.Fail(entity.LoadErrorOther) },
		func() { h.surface.Reload("") },
	}
	for i, step := range steps {
		step()
		assert.LessOrEqual(t, h.surface.PendingTimers(), 1, "step %d", i)
		assert.LessOrEqual(t, len(h.loop.Pending()), 1, "step %d", i)
		assert.Contains(t, []entity.ViewStatus{
			entity.ViewLoading, entity.ViewWaitingForAppReady, entity.ViewReady, entity.ViewError,
		}, h.surface.Status())
	}
}

func TestSurface_DestroyReleasesEverything(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	h.surface.Show()
	h.content.Fail(entity.LoadErrorOther)
	require.Len(t, h.loop.Pending(), 1)

	h.surface.Destroy()

	assert.Empty(t, h.loop.Pending())
	assert.True(t, h.content.Closed)
	assert.Empty(t, h.host.Attached)
	assert.False(t, h.surface.IsVisible())
	assert.True(t, h.surface.IsDestroyed())

	h.surface.Destroy()
	assert.Equal(t, 1, h.content.CloseCalls())

	h.surface.Reload("")
	assert.Len(t, h.content.Loads, 1, "destroyed surface never loads")
}

func TestSurface_OnLogin(t *testing.T) {
	t.Run("logged in on foreign page reloads", func(t *testing.T) {
		h := newHarness(t, nil)
		h.surface.Load("")
		h.content.Succeed()
		h.content.URL = "https://sso.example.com/login"

		h.surface.OnLogin(true)
		assert.True(t, h.surface.IsLoggedIn())
		assert.Len(t, h.content.Loads, 2)
		assert.Equal(t, entity.ViewLoading, h.surface.Status())
	})

	t.Run("re-auth on tab page does not reload", func(t *testing.T) {
		h := newHarness(t, nil)
		h.surface.Load("")
		h.content.Succeed()
		h.content.URL = "https://chat.example.com/sub/team/channels/town-square"

		h.surface.OnLogin(true)
		assert.Len(t, h.content.Loads, 1)
	})

	t.Run("logged in before any page reloads", func(t *testing.T) {
		h := newHarness(t, nil)
		h.surface.Load("")

		h.surface.OnLogin(true)
		assert.Len(t, h.content.Loads, 2)
		assert.Equal(t, entity.ViewLoading, h.surface.Status())
	})

	t.Run("unchanged state is a no-op", func(t *testing.T) {
		h := newHarness(t, nil)
		h.surface.Load("")
		h.content.URL = "https://sso.example.com/login"

		h.surface.OnLogin(false)
		assert.Len(t, h.content.Loads, 1)
	})
}

func TestSurface_BrowserHistory(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	h.content.Succeed()
	h.content.Back = true

	status := h.surface.BrowserHistoryStatus()
	assert.True(t, h.surface.IsAtRoot())
	assert.Equal(t, 1, h.content.Cleared, "history cleared at root")
	assert.False(t, status.CanGoBack)

	h.content.URL = "https://chat.example.com/sub/team/channels/dev"
	h.content.Back = true
	h.surface.UpdateHistoryButton()
	assert.False(t, h.surface.IsAtRoot())
	sent := h.content.SentOn(view.ChannelHistoryStatus)
	require.Len(t, sent, 1)
	assert.Equal(t, view.HistoryStatus{CanGoBack: true}, sent[0])

	h.content.OffsetErr = errors.New("invalid offset")
	h.surface.GoToOffset(-5)
	assert.Len(t, h.content.Loads, 2, "failed history navigation reloads")
}

func TestSurface_UpdateTitle(t *testing.T) {
	tests := []struct {
		raw      string
		title    string
		mentions int
	}{
		{raw: "(3) Town Square - Team", title: "Town Square - Team", mentions: 3},
		{raw: "* Off-Topic - Team", title: "Off-Topic - Team"},
		{raw: "Plain", title: "Plain"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			h := newHarness(t, nil)
			h.surface.UpdateTitle(tt.raw)
			assert.Equal(t, tt.title, h.surface.Title())
			got := eventsOf[view.TitleChanged](h.events)
			require.Len(t, got, 1)
			assert.Equal(t, tt.mentions, got[0].Mentions)
		})
	}
}

func TestSurface_UpdateTargetURL(t *testing.T) {
	h := newHarness(t, nil)

	h.surface.UpdateTargetURL("https://chat.example.com/sub/team/pl/abc")
	h.surface.UpdateTargetURL("https://docs.example.org/guide")

	got := eventsOf[view.TargetURLChanged](h.events)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].URL, "internal links are not shown")
	assert.Equal(t, "https://docs.example.org/guide", got[1].URL)
}

func TestSurface_Cookies(t *testing.T) {
	h := newHarness(t, nil)

	assert.True(t, h.surface.SetCookie("MMAUTHTOKEN=one; Path=/"))
	assert.True(t, h.surface.SetCookie("MMAUTHTOKEN=two; Path=/; Domain=chat.example.com"))
	assert.False(t, h.surface.SetCookie("tracker=x; Domain=ads.example.net"), "foreign domain rejected")
	assert.False(t, h.surface.SetCookie("garbage"))

	resp := http.Header{}
	resp.Add("Set-Cookie", "MMUSERID=u1; Path=/")
	h.surface.ExtractCookies(resp)

	cookies := h.surface.Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "MMAUTHTOKEN", cookies[0].Name)
	assert.Equal(t, "two", cookies[0].Value, "last write wins")

	req := http.Header{}
	h.surface.AppendCookies(req)
	assert.Equal(t, "MMAUTHTOKEN=two; MMUSERID=u1", req.Get("Cookie"))
}

func TestSurface_LoadsCarryCookieSnapshot(t *testing.T) {
	h := newHarness(t, nil)

	h.surface.Load("")
	first := h.content.LastLoad()
	assert.Empty(t, first.Header.Get("Cookie"))

	resp := http.Header{}
	resp.Add("Set-Cookie", "MMAUTHTOKEN=abc; Path=/; HttpOnly")
	resp.Add("Set-Cookie", "tracker=x; Domain=ads.example.net")
	h.content.Respond(resp)
	h.content.Succeed()

	require.Len(t, h.surface.Cookies(), 1)

	h.surface.Reload("")
	require.Len(t, h.content.Loads, 2)
	assert.Equal(t, "MMAUTHTOKEN=abc", h.content.LastLoad().Header.Get("Cookie"))
}

func TestSurface_ResponseAfterDestroyIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	h.surface.Destroy()

	resp := http.Header{}
	resp.Add("Set-Cookie", "MMAUTHTOKEN=abc")
	h.content.Respond(resp)

	assert.Empty(t, h.surface.Cookies())
}

func TestSurface_UpdateServer(t *testing.T) {
	h := newHarness(t, nil)
	h.surface.Load("")
	h.content.Succeed()
	h.surface.SetInitialized(false)
	h.surface.SetCookie("MMAUTHTOKEN=one")

	same := h.surface.Server()
	same.Name = "renamed"
	h.surface.UpdateServer(same)
	assert.Equal(t, "renamed", h.surface.Server().Name)
	assert.Len(t, h.content.Loads, 1)

	moved := h.surface.Server()
	require.NoError(t, moved.UpdateURL("https://chat2.example.com"))
	h.surface.UpdateServer(moved)
	require.Len(t, h.content.Loads, 2)
	assert.Equal(t, "https://chat2.example.com/", h.content.LastLoad().URL)
	assert.Empty(t, h.surface.Cookies(), "cookies are scoped to the old origin")
}

func TestSurface_ShowHide(t *testing.T) {
	h := newHarness(t, nil)

	h.surface.Show()
	h.surface.Show()
	require.Len(t, h.host.Attached, 1)
	assert.Same(t, h.content, h.host.Attached[0])
	assert.Equal(t, 1, h.host.Adds, "attach once")
	assert.True(t, h.surface.IsVisible())

	h.surface.SetBounds(entity.Rect{Y: 40, Width: 100, Height: 60})
	assert.Equal(t, 40, h.content.Bounds.Y)

	h.surface.Hide()
	assert.Empty(t, h.host.Attached)
	assert.False(t, h.surface.IsVisible())
}
