package usecase

import (
	"net/url"

	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
)

// LookupTab resolves target to the (server, tab) that serves it.
//
// A server matches when its origin equals the target origin and the target
// path lies under the server base path; when several servers match, the
// longest base path wins. Within the server the tab with the longest
// matching path wins, ties going to the earlier tab in order. The primary
// tab sits at the base path, so it catches every other path under the
// server. Without any matching tab the first tab is returned only for an
// exact base-path hit.
//
// servers must be in registry order and tabsFor must return tabs in tab
// order.
func LookupTab(
	servers []*entity.Server,
	tabsFor func(entity.ServerID) []*entity.Tab,
	target *url.URL,
) (*entity.Server, *entity.Tab, bool) {
	if target == nil {
		return nil, nil, false
	}

	var server *entity.Server
	serverLen := -1
	for _, srv := range servers {
		if srv == nil || srv.URL == nil || !urlutil.IsInternalURL(target, srv.URL) {
			continue
		}
		if l := len(urlutil.TrimPath(srv.BasePath())); l > serverLen {
			server = srv
			serverLen = l
		}
	}
	if server == nil {
		return nil, nil, false
	}

	tabs := tabsFor(server.ID)
	var best *entity.Tab
	bestLen := -1
	for _, tab := range tabs {
		tabURL := tab.URL(server)
		if tabURL == nil {
			continue
		}
		tabPath := urlutil.TrimPath(tabURL.Path)
		if !urlutil.HasPathPrefix(target.Path, tabPath) {
			continue
		}
		if len(tabPath) > bestLen {
			best = tab
			bestLen = len(tabPath)
		}
	}
	if best != nil {
		return server, best, true
	}

	if len(tabs) > 0 && urlutil.TrimPath(target.Path) == urlutil.TrimPath(server.BasePath()) {
		return server, tabs[0], true
	}
	return server, nil, false
}
