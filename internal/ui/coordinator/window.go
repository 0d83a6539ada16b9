package coordinator

import (
	"context"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/mainloop"
)

// WindowCoordinator is the shell-facing surface of the core: tab and server
// switching, window events and the messages the embedded apps send.
type WindowCoordinator struct {
	ctx     context.Context
	servers *usecase.ServerRegistry
	views   *ViewRegistry
	router  *NavigationRouter
	loading *LoadingScreen
	host    port.WindowHost
	resizes *mainloop.Coalescer[entity.Rect]

	lastBounds entity.Rect
	unread     map[entity.TabID]bool
}

// NewWindowCoordinator creates a new WindowCoordinator. Resize bursts are
// coalesced through dispatcher.
func NewWindowCoordinator(
	ctx context.Context,
	servers *usecase.ServerRegistry,
	views *ViewRegistry,
	router *NavigationRouter,
	loading *LoadingScreen,
	host port.WindowHost,
	dispatcher port.Dispatcher,
) *WindowCoordinator {
	log := logging.FromContext(ctx)
	log.Debug().Msg("creating window coordinator")

	w := &WindowCoordinator{
		ctx:     logging.WithComponent(ctx, "window"),
		servers: servers,
		views:   views,
		router:  router,
		loading: loading,
		host:    host,
		unread:  make(map[entity.TabID]bool),
	}
	w.resizes = mainloop.NewCoalescer(dispatcher.Post, w.applyBounds)
	return w
}

// Init creates the views and shows the initial tab.
func (w *WindowCoordinator) Init(ctx context.Context) {
	w.lastBounds = w.host.ContentBounds()
	w.views.Init(ctx)
}

// Close drops pending window work and releases every surface.
func (w *WindowCoordinator) Close(ctx context.Context) {
	w.resizes.Destroy()
	w.views.DestroyAll(ctx)
}

// SwitchServer shows the last active tab of serverID. With waitForView the
// switch waits for a reconciliation that creates the surface, e.g. right
// after adding the server.
func (w *WindowCoordinator) SwitchServer(ctx context.Context, serverID entity.ServerID, waitForView bool) error {
	log := logging.FromContext(ctx)

	tab := w.servers.LastActiveTabForServer(serverID)
	if tab == nil {
		return entity.ErrServerNotFound
	}
	log.Debug().Str("server_id", string(serverID)).Str("tab_id", string(tab.ID)).Msg("switching server")
	if waitForView {
		w.views.ShowWhenAvailable(ctx, tab.ID)
		return nil
	}
	w.views.ShowByID(ctx, tab.ID)
	return nil
}

// SwitchTab shows tabID.
func (w *WindowCoordinator) SwitchTab(ctx context.Context, tabID entity.TabID) {
	w.views.ShowByID(ctx, tabID)
}

// SelectNextTab cycles forward through the open tabs of the current server.
func (w *WindowCoordinator) SelectNextTab(ctx context.Context) {
	w.selectTab(ctx, func(index, length int) int { return index + 1 })
}

// SelectPreviousTab cycles backward through the open tabs of the current server.
func (w *WindowCoordinator) SelectPreviousTab(ctx context.Context) {
	w.selectTab(ctx, func(index, length int) int { return length + index - 1 })
}

func (w *WindowCoordinator) selectTab(ctx context.Context, step func(index, length int) int) {
	current := w.views.CurrentView()
	if current == nil {
		return
	}
	tabs := w.servers.OrderedTabsForServer(current.Server().ID)
	index := -1
	for i, tab := range tabs {
		if tab.ID == current.TabID() {
			index = i
			break
		}
	}
	if index < 0 {
		return
	}

	for range tabs {
		index = step(index, len(tabs)) % len(tabs)
		if tabs[index].IsOpen {
			w.SwitchTab(ctx, tabs[index].ID)
			return
		}
	}
}

// OpenTab marks tabID open and shows it.
func (w *WindowCoordinator) OpenTab(ctx context.Context, tabID entity.TabID) error {
	if err := w.servers.SetTabOpen(ctx, tabID, true); err != nil {
		return err
	}
	w.views.ShowByID(ctx, tabID)
	return nil
}

// CloseTab marks tabID closed and moves to the server's last active tab.
// The primary tab cannot be closed.
func (w *WindowCoordinator) CloseTab(ctx context.Context, tabID entity.TabID) error {
	tab := w.servers.Tab(tabID)
	if tab == nil {
		return entity.ErrTabNotFound
	}
	if err := w.servers.SetTabOpen(ctx, tabID, false); err != nil {
		return err
	}
	delete(w.unread, tabID)
	if next := w.servers.LastActiveTabForServer(tab.ServerID); next != nil {
		w.views.ShowByID(ctx, next.ID)
	}
	return nil
}

// HandleResize schedules a bounds update. Bursts collapse into one update.
func (w *WindowCoordinator) HandleResize(bounds entity.Rect) {
	w.resizes.Post(bounds)
}

func (w *WindowCoordinator) applyBounds(bounds entity.Rect) {
	if bounds == w.lastBounds {
		return
	}
	w.lastBounds = bounds
	logging.FromContext(w.ctx).Debug().
		Int("width", bounds.Width).
		Int("height", bounds.Height).
		Int("merged", w.resizes.Merged()).
		Msg("window resized")
	w.views.UpdateBounds()
}

// HandleFocus forwards window focus to the current view.
func (w *WindowCoordinator) HandleFocus() {
	w.views.Focus()
}

// ReloadCurrentView reloads the visible surface.
func (w *WindowCoordinator) ReloadCurrentView(ctx context.Context) {
	w.views.ReloadCurrent(ctx)
}

// LastActive returns the current server and tab ids.
func (w *WindowCoordinator) LastActive() (entity.ServerID, entity.TabID) {
	return w.servers.LastActive()
}

// SetDarkMode switches the loading overlay theme.
func (w *WindowCoordinator) SetDarkMode(dark bool) {
	w.loading.SetDarkMode(dark)
}

// AppInitialized handles the embedded app's ready signal.
func (w *WindowCoordinator) AppInitialized(ctx context.Context, tabID entity.TabID) {
	v := w.views.GetView(tabID)
	if v == nil {
		logging.FromContext(ctx).Warn().
			Err(&entity.ConfigurationRaceError{TabID: tabID, Op: "app initialized"}).
			Msg("ignoring app signal")
		return
	}
	v.SetInitialized(false)
}

// AppLoggedIn records a login in tabID.
func (w *WindowCoordinator) AppLoggedIn(tabID entity.TabID) {
	if v := w.views.GetView(tabID); v != nil {
		v.OnLogin(true)
	}
}

// AppLoggedOut records a logout in tabID.
func (w *WindowCoordinator) AppLoggedOut(tabID entity.TabID) {
	if v := w.views.GetView(tabID); v != nil {
		v.OnLogin(false)
	}
}

// LoadingScreenAnimationFinished hides the overlay after its fade.
func (w *WindowCoordinator) LoadingScreenAnimationFinished() {
	w.loading.AnimationFinished()
}

// BrowserHistoryPush routes a path pushed by tabID's app.
func (w *WindowCoordinator) BrowserHistoryPush(ctx context.Context, tabID entity.TabID, pathName string) {
	w.router.HandleBrowserHistoryPush(ctx, tabID, pathName)
}

// BrowserHistoryButton refreshes tabID's back/forward state.
func (w *WindowCoordinator) BrowserHistoryButton(tabID entity.TabID) {
	w.router.HandleBrowserHistoryButton(tabID)
}

// GoBack navigates the current view one step back.
func (w *WindowCoordinator) GoBack() {
	w.router.GoToOffset(-1)
}

// GoForward navigates the current view one step forward.
func (w *WindowCoordinator) GoForward() {
	w.router.GoToOffset(1)
}

// DeepLink opens an external URL in its tab.
func (w *WindowCoordinator) DeepLink(ctx context.Context, rawURL string) error {
	return w.router.HandleDeepLink(ctx, rawURL)
}

// UpdateTitle records tabID's page title.
func (w *WindowCoordinator) UpdateTitle(tabID entity.TabID, title string) {
	if v := w.views.GetView(tabID); v != nil {
		v.UpdateTitle(title)
	}
}

// UpdateTargetURL records the link hovered in tabID.
func (w *WindowCoordinator) UpdateTargetURL(tabID entity.TabID, rawURL string) {
	if v := w.views.GetView(tabID); v != nil {
		v.UpdateTargetURL(rawURL)
	}
}

// UnreadResult stores tabID's unread flag and reports changes to the shell.
func (w *WindowCoordinator) UnreadResult(tabID entity.TabID, unread bool) {
	tab := w.servers.Tab(tabID)
	if tab == nil || w.unread[tabID] == unread {
		return
	}
	if unread {
		w.unread[tabID] = true
	} else {
		delete(w.unread, tabID)
	}
	w.host.Send(port.StatusMessage{
		Kind:     port.StatusUnreadChanged,
		ServerID: tab.ServerID,
		TabID:    tabID,
		Unread:   unread,
	})
}

// Unread returns the tabs currently flagged unread.
func (w *WindowCoordinator) Unread() map[entity.TabID]bool {
	out := make(map[entity.TabID]bool, len(w.unread))
	for id, v := range w.unread {
		out[id] = v
	}
	return out
}
