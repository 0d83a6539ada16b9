package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/domain/repository"
	urlutil "github.com/bnema/deskview/internal/domain/url"
	"github.com/bnema/deskview/internal/logging"
)

// IDGenerator is a function type for generating unique IDs.
type IDGenerator func() string

// ChangeReason says which mutation produced a ServersChanged notification.
type ChangeReason string

const (
	ChangeServerAdded   ChangeReason = "server-added"
	ChangeServerEdited  ChangeReason = "server-edited"
	ChangeServerRemoved ChangeReason = "server-removed"
	ChangeTabOpened     ChangeReason = "tab-opened"
	ChangeTabClosed     ChangeReason = "tab-closed"
	ChangeRemoteInfo    ChangeReason = "remote-info"
	ChangeConfigSynced  ChangeReason = "config-synced"
)

// ServersChanged is broadcast after every structural mutation.
type ServersChanged struct {
	Reason   ChangeReason
	ServerID entity.ServerID // empty for whole-registry changes
	// URLChanged is set when the server base URL moved; live surfaces of
	// that server must reload.
	URLChanged bool
}

// ServerRegistry holds the ordered servers, their tabs and the
// last-active pointers.
type ServerRegistry struct {
	mu sync.RWMutex

	servers map[entity.ServerID]*entity.Server
	tabs    map[entity.TabID]*entity.Tab
	remote  map[entity.ServerID]entity.RemoteInfo

	// tabs whose open flag came from the user, config or persisted state;
	// capability detection never overrides those
	explicitOpen map[entity.TabID]bool

	// last config entry applied per server, URL normalized; a re-sync only
	// re-applies what changed since
	applied map[entity.ServerID]entity.ServerConfig

	lastActiveServer entity.ServerID
	lastActiveTab    map[entity.ServerID]entity.TabID

	persisted   *entity.NavigationState
	navRepo     repository.NavigationStateRepository
	idGenerator IDGenerator
	minVersion  string

	subscribers []func(ServersChanged)
}

// NewServerRegistry creates an empty registry. navRepo may be nil.
func NewServerRegistry(
	navRepo repository.NavigationStateRepository,
	idGenerator IDGenerator,
	minimumServerVersion string,
) *ServerRegistry {
	if minimumServerVersion == "" {
		minimumServerVersion = entity.DefaultMinimumServerVersion
	}
	return &ServerRegistry{
		servers:       make(map[entity.ServerID]*entity.Server),
		tabs:          make(map[entity.TabID]*entity.Tab),
		remote:        make(map[entity.ServerID]entity.RemoteInfo),
		explicitOpen:  make(map[entity.TabID]bool),
		applied:       make(map[entity.ServerID]entity.ServerConfig),
		lastActiveTab: make(map[entity.ServerID]entity.TabID),
		navRepo:       navRepo,
		idGenerator:   idGenerator,
		minVersion:    minimumServerVersion,
	}
}

// Subscribe registers fn for ServersChanged notifications. Notifications
// are delivered synchronously on the mutating goroutine, after the
// registry lock is released.
func (r *ServerRegistry) Subscribe(fn func(ServersChanged)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

func (r *ServerRegistry) notify(ev ServersChanged) {
	r.mu.RLock()
	subs := make([]func(ServersChanged), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Restore loads persisted navigation state and applies it to the servers
// already in the registry. Servers created later by SyncFromConfig pick it
// up too.
func (r *ServerRegistry) Restore(ctx context.Context) error {
	if r.navRepo == nil {
		return nil
	}
	log := logging.FromContext(ctx)

	state, err := r.navRepo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load navigation state: %w", err)
	}
	if state == nil {
		state = entity.NewNavigationState()
	}

	r.mu.Lock()
	r.persisted = state
	for _, srv := range r.servers {
		r.applyPersistedLocked(srv)
	}
	r.mu.Unlock()

	log.Debug().
		Str("current_server", state.CurrentServerURL).
		Int("open_flags", len(state.OpenTabs)).
		Msg("navigation state restored")
	return nil
}

func (r *ServerRegistry) applyPersistedLocked(srv *entity.Server) {
	if r.persisted == nil {
		return
	}
	key := srv.URLString()
	for _, tab := range r.tabsForLocked(srv.ID) {
		if open, ok := r.persisted.OpenTabs[entity.TabKey{ServerURL: key, Kind: tab.Kind}]; ok {
			tab.IsOpen = open || tab.Kind.IsPrimary()
			r.explicitOpen[tab.ID] = true
		}
		if kind, ok := r.persisted.LastActiveTabs[key]; ok && kind == tab.Kind {
			r.lastActiveTab[srv.ID] = tab.ID
		}
	}
	if r.persisted.CurrentServerURL == key && r.lastActiveServer == "" {
		r.lastActiveServer = srv.ID
	}
}

// AddServer validates input and appends a server with the default tab set.
func (r *ServerRegistry) AddServer(ctx context.Context, input entity.ServerInput) (*entity.Server, error) {
	log := logging.FromContext(ctx)
	log.Debug().Str("name", input.Name).Str("url", input.URL).Msg("adding server")

	srv, err := entity.NewServer(entity.ServerID(r.idGenerator()), input.Name, input.URL, false)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	srv.Order = r.nextOrderLocked()
	r.insertLocked(srv, nil)
	r.applyPersistedLocked(srv)
	out := srv.Clone()
	r.mu.Unlock()

	log.Info().Str("server_id", string(srv.ID)).Str("url", srv.URLString()).Int("order", srv.Order).Msg("server added")
	r.notify(ServersChanged{Reason: ChangeServerAdded, ServerID: srv.ID})
	return out, nil
}

func (r *ServerRegistry) nextOrderLocked() int {
	next := 0
	for _, srv := range r.servers {
		if srv.Order >= next {
			next = srv.Order + 1
		}
	}
	return next
}

// insertLocked adds srv with the default tabs, overridden by tabCfg.
func (r *ServerRegistry) insertLocked(srv *entity.Server, tabCfg []entity.TabConfig) {
	r.servers[srv.ID] = srv
	for _, tab := range entity.DefaultTabs(srv.ID, r.idGenerator) {
		r.tabs[tab.ID] = tab
	}
	r.applyTabConfigLocked(srv.ID, tabCfg)
}

func (r *ServerRegistry) applyTabConfigLocked(serverID entity.ServerID, tabCfg []entity.TabConfig) {
	if len(tabCfg) == 0 {
		return
	}
	byKind := make(map[entity.TabKind]*entity.Tab)
	for _, tab := range r.tabsForLocked(serverID) {
		byKind[tab.Kind] = tab
	}
	for _, tc := range tabCfg {
		tab, ok := byKind[tc.Kind]
		if !ok {
			continue
		}
		tab.Order = tc.Order
		tab.IsOpen = tc.IsOpen || tab.Kind.IsPrimary()
		r.explicitOpen[tab.ID] = true
	}
}

// EditServer patches name and URL. An empty field keeps its value.
func (r *ServerRegistry) EditServer(ctx context.Context, id entity.ServerID, input entity.ServerInput) error {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	srv, ok := r.servers[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("edit server %s: %w", id, entity.ErrServerNotFound)
	}

	oldURL := srv.URLString()
	if input.URL != "" {
		// validate on a copy so a bad URL leaves the server untouched
		probe := srv.Clone()
		if err := probe.UpdateURL(input.URL); err != nil {
			r.mu.Unlock()
			return err
		}
		srv.URL = probe.URL
	}
	if input.Name != "" {
		srv.Name = input.Name
	}
	urlChanged := srv.URLString() != oldURL
	if urlChanged {
		delete(r.remote, id)
	}
	r.mu.Unlock()

	log.Info().
		Str("server_id", string(id)).
		Str("name", srv.Name).
		Bool("url_changed", urlChanged).
		Msg("server edited")
	r.notify(ServersChanged{Reason: ChangeServerEdited, ServerID: id, URLChanged: urlChanged})
	return nil
}

// RemoveServer deletes a server and its tabs. Unknown ids are a no-op.
func (r *ServerRegistry) RemoveServer(ctx context.Context, id entity.ServerID) {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	srv, ok := r.servers[id]
	if !ok {
		r.mu.Unlock()
		log.Debug().Str("server_id", string(id)).Msg("remove of unknown server ignored")
		return
	}
	r.removeLocked(srv)
	r.mu.Unlock()

	if r.navRepo != nil {
		if err := r.navRepo.ForgetServer(ctx, srv.URLString()); err != nil {
			log.Warn().Err(err).Str("server_id", string(id)).Msg("failed to forget navigation state")
		}
	}

	log.Info().Str("server_id", string(id)).Msg("server removed")
	r.notify(ServersChanged{Reason: ChangeServerRemoved, ServerID: id})
}

func (r *ServerRegistry) removeLocked(srv *entity.Server) {
	for tabID, tab := range r.tabs {
		if tab.ServerID == srv.ID {
			delete(r.tabs, tabID)
			delete(r.explicitOpen, tabID)
		}
	}
	delete(r.servers, srv.ID)
	delete(r.remote, srv.ID)
	delete(r.applied, srv.ID)
	delete(r.lastActiveTab, srv.ID)
	if r.lastActiveServer == srv.ID {
		r.lastActiveServer = ""
	}
}

// AllServers returns copies of every server in order.
func (r *ServerRegistry) AllServers() []*entity.Server {
	return r.OrderedServers()
}

// OrderedServers returns copies of every server sorted by order, ties by id.
func (r *ServerRegistry) OrderedServers() []*entity.Server {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := r.orderedServersLocked()
	out := make([]*entity.Server, 0, len(ordered))
	for _, srv := range ordered {
		out = append(out, srv.Clone())
	}
	return out
}

func (r *ServerRegistry) orderedServersLocked() []*entity.Server {
	out := make([]*entity.Server, 0, len(r.servers))
	for _, srv := range r.servers {
		out = append(out, srv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Server returns a copy of the server, or nil.
func (r *ServerRegistry) Server(id entity.ServerID) *entity.Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.servers[id].Clone()
}

// Tab returns a copy of the tab, or nil.
func (r *ServerRegistry) Tab(id entity.TabID) *entity.Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tabs[id].Clone()
}

// OrderedTabsForServer returns copies of the server's tabs sorted by
// order, ties broken by id.
func (r *ServerRegistry) OrderedTabsForServer(serverID entity.ServerID) []*entity.Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tabs := r.tabsForLocked(serverID)
	out := make([]*entity.Tab, 0, len(tabs))
	for _, tab := range tabs {
		out = append(out, tab.Clone())
	}
	return out
}

func (r *ServerRegistry) tabsForLocked(serverID entity.ServerID) []*entity.Tab {
	var out []*entity.Tab
	for _, tab := range r.tabs {
		if tab.ServerID == serverID {
			out = append(out, tab)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetTabOpen flips a tab's open flag. The primary tab cannot be closed.
func (r *ServerRegistry) SetTabOpen(ctx context.Context, tabID entity.TabID, open bool) error {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	tab, ok := r.tabs[tabID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("set tab open %s: %w", tabID, entity.ErrTabNotFound)
	}
	if !open && tab.Kind.IsPrimary() {
		r.mu.Unlock()
		log.Debug().Str("tab_id", string(tabID)).Msg("primary tab stays open")
		return nil
	}
	r.explicitOpen[tabID] = true
	if tab.IsOpen == open {
		r.mu.Unlock()
		return nil
	}
	tab.IsOpen = open
	serverID := tab.ServerID
	key := entity.TabKey{ServerURL: r.servers[serverID].URLString(), Kind: tab.Kind}
	r.mu.Unlock()

	if r.navRepo != nil {
		if err := r.navRepo.SaveTabOpen(ctx, key, open); err != nil {
			log.Warn().Err(err).Str("tab_id", string(tabID)).Msg("failed to persist tab open flag")
		}
	}

	reason := ChangeTabClosed
	if open {
		reason = ChangeTabOpened
	}
	log.Info().Str("tab_id", string(tabID)).Bool("open", open).Msg("tab open state changed")
	r.notify(ServersChanged{Reason: reason, ServerID: serverID})
	return nil
}

// LastActiveTabForServer returns the stored last-active tab if it is open,
// else the lowest-order open tab, else the lowest-order tab even if closed.
func (r *ServerRegistry) LastActiveTabForServer(serverID entity.ServerID) *entity.Tab {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActiveTabLocked(serverID).Clone()
}

func (r *ServerRegistry) lastActiveTabLocked(serverID entity.ServerID) *entity.Tab {
	if id, ok := r.lastActiveTab[serverID]; ok {
		if tab, ok := r.tabs[id]; ok && tab.IsOpen {
			return tab
		}
	}
	tabs := r.tabsForLocked(serverID)
	for _, tab := range tabs {
		if tab.IsOpen {
			return tab
		}
	}
	if len(tabs) > 0 {
		return tabs[0]
	}
	return nil
}

// CurrentServer returns the last active server, else the first in order.
func (r *ServerRegistry) CurrentServer() *entity.Server {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if srv, ok := r.servers[r.lastActiveServer]; ok {
		return srv.Clone()
	}
	ordered := r.orderedServersLocked()
	if len(ordered) == 0 {
		return nil
	}
	return ordered[0].Clone()
}

// UpdateLastActive moves both the current-server and the per-server
// last-active tab pointers to tabID.
func (r *ServerRegistry) UpdateLastActive(ctx context.Context, tabID entity.TabID) error {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	tab, ok := r.tabs[tabID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("update last active %s: %w", tabID, entity.ErrTabNotFound)
	}
	if r.lastActiveServer == tab.ServerID && r.lastActiveTab[tab.ServerID] == tabID {
		r.mu.Unlock()
		return nil
	}
	r.lastActiveServer = tab.ServerID
	r.lastActiveTab[tab.ServerID] = tabID
	serverURL := r.servers[tab.ServerID].URLString()
	kind := tab.Kind
	r.mu.Unlock()

	if r.navRepo != nil {
		if err := r.navRepo.SaveLastActive(ctx, serverURL, kind); err != nil {
			log.Warn().Err(err).Str("tab_id", string(tabID)).Msg("failed to persist last active tab")
		}
	}
	log.Debug().Str("tab_id", string(tabID)).Str("server_id", string(tab.ServerID)).Msg("last active updated")
	return nil
}

// LastActive returns the current server and its last-active tab ids.
func (r *ServerRegistry) LastActive() (entity.ServerID, entity.TabID) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActiveServer, r.lastActiveTab[r.lastActiveServer]
}

// LookupTabByURL resolves rawURL to a server and tab. See LookupTab.
func (r *ServerRegistry) LookupTabByURL(rawURL string) (*entity.Server, *entity.Tab, bool) {
	target, err := urlutil.Parse(rawURL)
	if err != nil {
		return nil, nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	srv, tab, ok := LookupTab(r.orderedServersLocked(), r.tabsForLocked, target)
	if !ok {
		return nil, nil, false
	}
	return srv.Clone(), tab.Clone(), true
}

// RemoteInfo returns what the server last reported about itself.
func (r *ServerRegistry) RemoteInfo(serverID entity.ServerID) (entity.RemoteInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.remote[serverID]
	return info, ok
}

// UpdateRemoteInfo stores probed server info. A differing site URL
// rewrites the server URL, and for compatible servers every secondary tab
// whose capability is reported is opened unless its flag was set
// explicitly. ServersChanged is emitted only when something changed.
func (r *ServerRegistry) UpdateRemoteInfo(ctx context.Context, serverID entity.ServerID, info entity.RemoteInfo) error {
	log := logging.FromContext(ctx)

	r.mu.Lock()
	srv, ok := r.servers[serverID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("update remote info %s: %w", serverID, entity.ErrServerNotFound)
	}
	r.remote[serverID] = info

	changed := false
	urlChanged := false
	if info.SiteURL != "" {
		site, err := urlutil.ParseServerURL(info.SiteURL)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("site_url", info.SiteURL).Msg("server reported an invalid site url")
		case site.String() != srv.URLString():
			log.Info().
				Str("server_id", string(serverID)).
				Str("from", srv.URLString()).
				Str("to", site.String()).
				Msg("server url rewritten to site url")
			srv.URL = site
			changed = true
			urlChanged = true
		}
	}

	if info.VersionAtLeast(r.minVersion) {
		for _, tab := range r.tabsForLocked(serverID) {
			if tab.IsOpen || r.explicitOpen[tab.ID] || !tab.Kind.Supported(info) {
				continue
			}
			tab.IsOpen = true
			changed = true
			log.Debug().Str("tab_id", string(tab.ID)).Str("kind", tab.Kind.String()).Msg("tab opened by capability")
		}
	}
	r.mu.Unlock()

	if changed {
		r.notify(ServersChanged{Reason: ChangeRemoteInfo, ServerID: serverID, URLChanged: urlChanged})
	}
	return nil
}

// SyncFromConfig converges the registry onto a configuration snapshot.
// Servers are matched by URL, then by name, so matched servers and their
// tabs keep their ids. For a matched server only the URL and tab entries
// that changed since the previous snapshot are applied, so runtime open
// flags and site URL rewrites survive unrelated edits. Invalid entries are
// skipped and reported together.
func (r *ServerRegistry) SyncFromConfig(ctx context.Context, configs []entity.ServerConfig) error {
	log := logging.FromContext(ctx)

	var errs []error

	r.mu.Lock()
	byURL := make(map[string]*entity.Server, len(r.servers))
	byName := make(map[string]*entity.Server, len(r.servers))
	for _, srv := range r.orderedServersLocked() {
		byURL[srv.URLString()] = srv
		if _, dup := byName[srv.Name]; !dup {
			byName[srv.Name] = srv
		}
	}

	kept := make(map[entity.ServerID]bool, len(configs))
	for i, cfg := range configs {
		parsed, err := entity.NewServer("", cfg.Name, cfg.URL, cfg.Predefined)
		if err != nil {
			errs = append(errs, fmt.Errorf("server %q: %w", cfg.Name, err))
			continue
		}
		order := cfg.Order
		if order == 0 {
			order = i
		}

		snapshot := cfg
		snapshot.URL = parsed.URLString()
		snapshot.Tabs = slices.Clone(cfg.Tabs)

		match := byURL[parsed.URLString()]
		if match == nil || kept[match.ID] {
			match = byName[cfg.Name]
		}
		if match != nil && !kept[match.ID] {
			prev, seen := r.applied[match.ID]
			match.Name = cfg.Name
			if !seen || prev.URL != snapshot.URL {
				match.URL = parsed.URL
			}
			match.IsPredefined = cfg.Predefined
			match.Order = order
			if seen {
				r.applyTabConfigLocked(match.ID, changedTabConfigs(prev.Tabs, cfg.Tabs))
			} else {
				r.applyTabConfigLocked(match.ID, cfg.Tabs)
			}
			r.applied[match.ID] = snapshot
			kept[match.ID] = true
			continue
		}

		parsed.ID = entity.ServerID(r.idGenerator())
		parsed.Order = order
		r.insertLocked(parsed, cfg.Tabs)
		r.applyPersistedLocked(parsed)
		r.applied[parsed.ID] = snapshot
		kept[parsed.ID] = true
	}

	removed := 0
	for id, srv := range r.servers {
		if !kept[id] {
			r.removeLocked(srv)
			removed++
		}
	}
	total := len(r.servers)
	r.mu.Unlock()

	log.Info().Int("servers", total).Int("removed", removed).Int("invalid", len(errs)).Msg("servers synced from config")
	r.notify(ServersChanged{Reason: ChangeConfigSynced})
	return errors.Join(errs...)
}

// changedTabConfigs returns the entries of next that are new or differ from
// the entry of the same kind in prev.
func changedTabConfigs(prev, next []entity.TabConfig) []entity.TabConfig {
	before := make(map[entity.TabKind]entity.TabConfig, len(prev))
	for _, tc := range prev {
		before[tc.Kind] = tc
	}
	var out []entity.TabConfig
	for _, tc := range next {
		if old, ok := before[tc.Kind]; ok && old == tc {
			continue
		}
		out = append(out, tc)
	}
	return out
}
