package coordinator

import (
	"context"
	"fmt"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/view"
)

// ClosedView is a configured tab without a live surface.
type ClosedView struct {
	Server *entity.Server
	Tab    *entity.Tab
}

// ViewRegistry owns every surface. It maps tabs to live surfaces, keeps
// closed tabs aside, holds the single visible slot and reconciles the
// live set against the server registry.
type ViewRegistry struct {
	ctx     context.Context
	servers *usecase.ServerRegistry
	factory port.ContentFactory
	host    port.WindowHost
	loading *LoadingScreen
	deps    view.Deps
	cfg     view.Config

	views  map[entity.TabID]*view.Surface
	closed map[entity.TabID]ClosedView

	current entity.TabID

	// tabs to bring forward once their load succeeds
	pendingReveal map[entity.TabID]bool
	// tab requested before its surface existed
	pendingShow entity.TabID

	subscribed bool
}

var _ view.Sink = (*ViewRegistry)(nil)

// NewViewRegistry creates an empty registry. deps.Sink and deps.Remote are
// overridden: surfaces report to the registry and read remote info from
// servers.
func NewViewRegistry(
	ctx context.Context,
	servers *usecase.ServerRegistry,
	factory port.ContentFactory,
	loading *LoadingScreen,
	deps view.Deps,
	cfg view.Config,
) *ViewRegistry {
	log := logging.FromContext(ctx)
	log.Debug().Msg("creating view registry")

	r := &ViewRegistry{
		ctx:           logging.WithComponent(ctx, "view-registry"),
		servers:       servers,
		factory:       factory,
		host:          deps.Host,
		loading:       loading,
		cfg:           cfg,
		views:         make(map[entity.TabID]*view.Surface),
		closed:        make(map[entity.TabID]ClosedView),
		pendingReveal: make(map[entity.TabID]bool),
	}
	deps.Sink = r
	deps.Remote = servers
	r.deps = deps
	return r
}

// Init creates a surface for every open tab, records closed tabs, starts
// the loads and shows the initial tab. Later registry changes are
// reconciled automatically.
func (r *ViewRegistry) Init(ctx context.Context) {
	log := logging.FromContext(ctx)

	var created []*view.Surface
	for _, srv := range r.servers.OrderedServers() {
		for _, tab := range r.servers.OrderedTabsForServer(srv.ID) {
			if !tab.IsOpen {
				r.closed[tab.ID] = ClosedView{Server: srv, Tab: tab}
				continue
			}
			v, err := r.createSurface(ctx, srv, tab)
			if err != nil {
				log.Error().Err(err).Str("tab_id", string(tab.ID)).Msg("failed to create surface")
				continue
			}
			r.views[tab.ID] = v
			created = append(created, v)
		}
	}
	for _, v := range created {
		v.Load("")
	}

	if !r.subscribed {
		r.servers.Subscribe(func(usecase.ServersChanged) {
			r.HandleReloadConfiguration(r.ctx)
		})
		r.subscribed = true
	}

	log.Info().Int("live", len(r.views)).Int("closed", len(r.closed)).Msg("views initialized")
	r.showInitial(ctx)
}

func (r *ViewRegistry) createSurface(ctx context.Context, srv *entity.Server, tab *entity.Tab) (*view.Surface, error) {
	content, err := r.factory.NewContent(ctx, srv.ID, tab.ID)
	if err != nil {
		return nil, fmt.Errorf("create content for tab %s: %w", tab.ID, err)
	}
	return view.New(r.ctx, srv, tab, content, r.deps, r.cfg), nil
}

func (r *ViewRegistry) showInitial(ctx context.Context) {
	log := logging.FromContext(ctx)

	srv := r.servers.CurrentServer()
	if srv == nil {
		log.Debug().Msg("no servers configured, nothing to show")
		return
	}
	tab := r.servers.LastActiveTabForServer(srv.ID)
	if tab == nil {
		return
	}
	if _, ok := r.views[tab.ID]; !ok {
		log.Debug().Str("tab_id", string(tab.ID)).Msg("initial tab has no live view")
		return
	}
	r.ShowByID(ctx, tab.ID)
}

// ShowByID makes tabID the single visible surface. Showing the current
// visible tab again is a no-op; unknown tabs are logged and ignored.
func (r *ViewRegistry) ShowByID(ctx context.Context, tabID entity.TabID) {
	log := logging.FromContext(ctx)

	v, ok := r.views[tabID]
	if !ok {
		err := &entity.ConfigurationRaceError{TabID: tabID, Op: "show"}
		log.Warn().Err(err).Msg("ignoring show request")
		return
	}
	if r.current == tabID && v.IsVisible() {
		return
	}

	if prev, ok := r.views[r.current]; ok && prev != v {
		prev.Hide()
	}
	r.current = tabID
	r.activate(ctx, v)
}

// activate performs the visible-slot bookkeeping for the current view.
func (r *ViewRegistry) activate(ctx context.Context, v *view.Surface) {
	log := logging.FromContext(ctx)

	v.Show()
	v.SetBounds(r.boundsFor(v))
	if r.loading != nil {
		r.loading.SetBounds(ViewBounds(r.host.ContentBounds(), false))
		if v.NeedsLoadingScreen() {
			r.loading.Show()
		} else {
			r.loading.Fade()
		}
	}

	srv := v.Server()
	if err := r.servers.UpdateLastActive(ctx, v.TabID()); err != nil {
		log.Warn().Err(err).Msg("failed to update last active tab")
	}
	r.host.Send(port.StatusMessage{
		Kind:     port.StatusActiveViewChanged,
		ServerID: srv.ID,
		TabID:    v.TabID(),
		Title:    v.Tab().Name(srv),
	})
	v.UpdateHistoryButton()

	log.Info().
		Str("tab_id", string(v.TabID())).
		Str("server_id", string(srv.ID)).
		Str("status", v.Status().String()).
		Msg("view shown")
}

func (r *ViewRegistry) boundsFor(v *view.Surface) entity.Rect {
	return ViewBounds(r.host.ContentBounds(), needsBackBar(v.CurrentURL(), v.Server()))
}

// HandleReloadConfiguration converges the live set onto the registry.
// Open tabs that already have a surface keep it untouched; newly open tabs
// get one; closed and removed tabs lose theirs. The new maps are committed
// before any visibility decision.
func (r *ViewRegistry) HandleReloadConfiguration(ctx context.Context) {
	log := logging.FromContext(ctx)

	type serverUpdate struct {
		surface *view.Surface
		server  *entity.Server
	}

	views := make(map[entity.TabID]*view.Surface, len(r.views))
	closed := make(map[entity.TabID]ClosedView, len(r.closed))
	var created []*view.Surface
	var updates []serverUpdate

	for _, srv := range r.servers.OrderedServers() {
		for _, tab := range r.servers.OrderedTabsForServer(srv.ID) {
			if !tab.IsOpen {
				closed[tab.ID] = ClosedView{Server: srv, Tab: tab}
				continue
			}
			if v, ok := r.views[tab.ID]; ok {
				v.UpdateTab(tab)
				views[tab.ID] = v
				updates = append(updates, serverUpdate{surface: v, server: srv})
				continue
			}
			v, err := r.createSurface(ctx, srv, tab)
			if err != nil {
				log.Error().Err(err).Str("tab_id", string(tab.ID)).Msg("failed to create surface")
				closed[tab.ID] = ClosedView{Server: srv, Tab: tab}
				continue
			}
			views[tab.ID] = v
			created = append(created, v)
		}
	}

	var dropped []*view.Surface
	for id, v := range r.views {
		if _, keep := views[id]; !keep {
			dropped = append(dropped, v)
		}
	}

	r.views = views
	r.closed = closed
	for id := range r.pendingReveal {
		if _, ok := views[id]; !ok {
			delete(r.pendingReveal, id)
		}
	}
	if _, ok := views[r.current]; !ok {
		r.current = ""
	}

	for _, v := range dropped {
		v.Destroy()
	}
	for _, u := range updates {
		u.surface.UpdateServer(u.server)
	}
	for _, v := range created {
		v.Load("")
	}

	log.Debug().
		Int("live", len(views)).
		Int("closed", len(closed)).
		Int("created", len(created)).
		Int("destroyed", len(dropped)).
		Msg("views reconciled")

	if r.current == "" {
		r.showInitial(ctx)
	}
	r.flushPendingShow(ctx)
}

// OpenClosedTab moves tabID from the closed set to a live surface loading
// rawURL (or the tab URL), marks it open in the registry and shows it.
// After its first successful load it is shown again like any open tab.
func (r *ViewRegistry) OpenClosedTab(ctx context.Context, tabID entity.TabID, rawURL string) error {
	log := logging.FromContext(ctx)

	cv, ok := r.closed[tabID]
	if !ok {
		err := &entity.ConfigurationRaceError{TabID: tabID, Op: "open closed tab"}
		log.Warn().Err(err).Msg("tab is not closed")
		return err
	}

	tab := cv.Tab.Clone()
	tab.IsOpen = true
	v, err := r.createSurface(ctx, cv.Server, tab)
	if err != nil {
		return err
	}
	delete(r.closed, tabID)
	r.views[tabID] = v

	// the surface is already live, so the reconciliation this triggers keeps it
	if err := r.servers.SetTabOpen(ctx, tabID, true); err != nil {
		log.Warn().Err(err).Msg("failed to mark tab open")
	}
	if r.views[tabID] != v {
		// reconciliation dropped the tab meanwhile
		return &entity.ConfigurationRaceError{TabID: tabID, Op: "open closed tab"}
	}

	v.Load(rawURL)
	r.ShowByID(ctx, tabID)
	r.markPendingReveal(tabID)
	log.Info().Str("tab_id", string(tabID)).Str("url", rawURL).Msg("closed tab opened")
	return nil
}

func (r *ViewRegistry) markPendingReveal(tabID entity.TabID) {
	r.pendingReveal[tabID] = true
}

// revealIfPending brings a tab forward after its load succeeded.
func (r *ViewRegistry) revealIfPending(ctx context.Context, tabID entity.TabID) {
	if !r.pendingReveal[tabID] {
		return
	}
	delete(r.pendingReveal, tabID)

	v, ok := r.views[tabID]
	if !ok {
		return
	}
	if r.current == tabID {
		r.activate(ctx, v)
		return
	}
	r.ShowByID(ctx, tabID)
}

// ShowWhenAvailable shows tabID now if it has a surface, or as soon as a
// reconciliation creates one.
func (r *ViewRegistry) ShowWhenAvailable(ctx context.Context, tabID entity.TabID) {
	if _, ok := r.views[tabID]; ok {
		r.pendingShow = ""
		r.ShowByID(ctx, tabID)
		return
	}
	logging.FromContext(ctx).Debug().Str("tab_id", string(tabID)).Msg("view not available yet, deferring show")
	r.pendingShow = tabID
}

func (r *ViewRegistry) flushPendingShow(ctx context.Context) {
	if r.pendingShow == "" {
		return
	}
	if _, ok := r.views[r.pendingShow]; !ok {
		return
	}
	tabID := r.pendingShow
	r.pendingShow = ""
	r.ShowByID(ctx, tabID)
}

// Destroy releases tabID's surface, or forgets its closed entry.
func (r *ViewRegistry) Destroy(ctx context.Context, tabID entity.TabID) {
	if v, ok := r.views[tabID]; ok {
		delete(r.views, tabID)
		delete(r.pendingReveal, tabID)
		if r.current == tabID {
			r.current = ""
		}
		v.Destroy()
		logging.FromContext(ctx).Debug().Str("tab_id", string(tabID)).Msg("view destroyed")
		return
	}
	delete(r.closed, tabID)
}

// DestroyAll releases every surface.
func (r *ViewRegistry) DestroyAll(ctx context.Context) {
	for id := range r.views {
		r.Destroy(ctx, id)
	}
	r.closed = make(map[entity.TabID]ClosedView)
	r.pendingShow = ""
}

// Dispatch is the single entry point for surface events.
func (r *ViewRegistry) Dispatch(ctx context.Context, ev view.Event) {
	log := logging.FromContext(ctx)

	v, ok := r.views[ev.Source()]
	if !ok {
		log.Debug().Str("tab_id", string(ev.Source())).Msgf("dropping %T from unknown view", ev)
		return
	}
	srv := v.Server()
	msg := port.StatusMessage{ServerID: srv.ID, TabID: v.TabID()}
	isCurrent := ev.Source() == r.current

	switch e := ev.(type) {
	case view.LoadSuccess:
		msg.Kind = port.StatusLoadSuccess
		msg.URL = e.URL
		r.host.Send(msg)
		if isCurrent {
			v.SetBounds(r.boundsFor(v))
		}
		r.revealIfPending(ctx, e.TabID)
	case view.LoadRetry:
		msg.Kind = port.StatusLoadRetry
		msg.URL = e.URL
		msg.RetryAt = e.RetryAt
		msg.Err = e.Err
		r.host.Send(msg)
	case view.LoadFailed:
		msg.Kind = port.StatusLoadFailed
		msg.URL = e.URL
		msg.Err = e.Err
		r.host.Send(msg)
		delete(r.pendingReveal, e.TabID)
		if isCurrent && r.loading != nil {
			r.loading.Fade()
		}
	case view.IncompatibleServer:
		msg.Kind = port.StatusIncompatibleServer
		msg.Err = fmt.Errorf("server version %q: %w", e.ServerVersion, entity.ErrIncompatibleServer)
		r.host.Send(msg)
		delete(r.pendingReveal, e.TabID)
		if isCurrent && r.loading != nil {
			r.loading.Fade()
		}
	case view.LoadscreenEnd:
		if isCurrent && r.loading != nil {
			r.loading.Fade()
		}
	case view.TargetURLChanged:
		msg.Kind = port.StatusTargetURLChanged
		msg.URL = e.URL
		r.host.Send(msg)
	case view.TitleChanged:
		msg.Kind = port.StatusTitleChanged
		msg.Title = e.Title
		msg.Mentions = e.Mentions
		r.host.Send(msg)
	}
}

// GetView returns the live surface of tabID, or nil.
func (r *ViewRegistry) GetView(tabID entity.TabID) *view.Surface {
	return r.views[tabID]
}

// CurrentView returns the visible surface, or nil.
func (r *ViewRegistry) CurrentView() *view.Surface {
	return r.views[r.current]
}

// CurrentTabID returns the tab holding the visible slot.
func (r *ViewRegistry) CurrentTabID() entity.TabID {
	return r.current
}

// IsViewClosed reports whether tabID is configured but closed.
func (r *ViewRegistry) IsViewClosed(tabID entity.TabID) bool {
	_, ok := r.closed[tabID]
	return ok
}

// ReloadCurrent reloads the visible surface.
func (r *ViewRegistry) ReloadCurrent(ctx context.Context) {
	v := r.CurrentView()
	if v == nil {
		return
	}
	v.Reload("")
	r.activate(ctx, v)
}

// Focus gives focus to the visible surface.
func (r *ViewRegistry) Focus() {
	if v := r.CurrentView(); v != nil {
		v.Focus()
	}
}

// SendToAllViews broadcasts a message to every live surface.
func (r *ViewRegistry) SendToAllViews(channel string, payload any) {
	for _, v := range r.views {
		v.SendToRenderer(channel, payload)
	}
}

// UpdateBounds re-applies window geometry to the visible surface and the
// loading overlay. Hidden surfaces are sized when shown.
func (r *ViewRegistry) UpdateBounds() {
	if r.loading != nil {
		r.loading.SetBounds(ViewBounds(r.host.ContentBounds(), false))
	}
	if v := r.CurrentView(); v != nil {
		v.SetBounds(r.boundsFor(v))
	}
}

// ViewStatuses snapshots the status of every live surface.
func (r *ViewRegistry) ViewStatuses() map[entity.TabID]entity.ViewStatus {
	out := make(map[entity.TabID]entity.ViewStatus, len(r.views))
	for id, v := range r.views {
		out[id] = v.Status()
	}
	return out
}

// ClosedTabs returns the ids of configured closed tabs.
func (r *ViewRegistry) ClosedTabs() []entity.TabID {
	out := make([]entity.TabID, 0, len(r.closed))
	for id := range r.closed {
		out = append(out, id)
	}
	return out
}
