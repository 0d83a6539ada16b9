package coordinator

import (
	"context"
	"fmt"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/application/usecase"
	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
	"github.com/bnema/deskview/internal/logging"
	"github.com/bnema/deskview/internal/ui/view"
)

// NavigationRouter resolves URLs to tabs and routes in-app navigation
// between surfaces.
type NavigationRouter struct {
	servers *usecase.ServerRegistry
	views   *ViewRegistry
	host    port.WindowHost
}

// NewNavigationRouter creates a new NavigationRouter.
func NewNavigationRouter(
	ctx context.Context,
	servers *usecase.ServerRegistry,
	views *ViewRegistry,
	host port.WindowHost,
) *NavigationRouter {
	log := logging.FromContext(ctx)
	log.Debug().Msg("creating navigation router")

	return &NavigationRouter{
		servers: servers,
		views:   views,
		host:    host,
	}
}

// LookupTabByURL returns the best matching server and tab for rawURL.
func (n *NavigationRouter) LookupTabByURL(rawURL string) (*entity.Server, *entity.Tab, bool) {
	return n.servers.LookupTabByURL(rawURL)
}

// HandleBrowserHistoryPush handles a path pushed by the embedded app of
// tabID. A path owned by another logged-in tab of the current server moves
// the visible slot there; a closed owner is opened at the path. The push is
// then forwarded in place, except when it would send a redirected
// messaging tab back to its root.
func (n *NavigationRouter) HandleBrowserHistoryPush(ctx context.Context, tabID entity.TabID, pathName string) {
	log := logging.FromContext(ctx)
	log.Debug().Str("tab_id", string(tabID)).Str("path", pathName).Msg("browser history push")

	current := n.views.GetView(tabID)
	if current == nil {
		err := &entity.ConfigurationRaceError{TabID: tabID, Op: "history push"}
		log.Warn().Err(err).Msg("ignoring history push")
		return
	}
	srv := current.Server()
	cleaned := urlutil.CleanPathName(srv.BasePath(), pathName)

	targetID := tabID
	if _, tab, ok := n.servers.LookupTabByURL(srv.BaseURLNoSlash() + cleaned); ok {
		targetID = tab.ID
	}

	if n.views.IsViewClosed(targetID) {
		if err := n.views.OpenClosedTab(ctx, targetID, srv.BaseURLNoSlash()+cleaned); err != nil {
			log.Warn().Err(err).Msg("failed to open closed tab for history push")
		}
		return
	}

	target := n.views.GetView(targetID)
	redirected := false
	if target != nil && target != current && n.onCurrentServer(target) && target.IsLoggedIn() {
		log.Info().Str("tab_id", string(targetID)).Msg("redirecting to another view")
		n.views.ShowByID(ctx, targetID)
		redirected = true
	} else {
		target = current
	}

	if redirected && target.Tab().Kind == entity.TabKindMessaging && cleaned == "/" {
		return
	}
	target.SendToRenderer(view.ChannelHistoryPush, cleaned)
	target.UpdateHistoryButton()
}

func (n *NavigationRouter) onCurrentServer(v *view.Surface) bool {
	cur := n.servers.CurrentServer()
	return cur != nil && cur.ID == v.Server().ID
}

// HandleBrowserHistoryButton refreshes the back/forward state of tabID.
func (n *NavigationRouter) HandleBrowserHistoryButton(tabID entity.TabID) {
	if v := n.views.GetView(tabID); v != nil {
		v.UpdateHistoryButton()
	}
}

// GoToOffset navigates the history of the current view.
func (n *NavigationRouter) GoToOffset(offset int) {
	if v := n.views.CurrentView(); v != nil {
		v.GoToOffset(offset)
	}
}

// HandleDeepLink routes an external URL to its tab. Closed tabs are opened
// at the URL; a ready tab on a server that supports in-place navigation
// receives a history push; anything else reloads at the URL and is shown
// once the load succeeds.
func (n *NavigationRouter) HandleDeepLink(ctx context.Context, rawURL string) error {
	log := logging.FromContext(ctx)

	parsed, err := urlutil.Parse(rawURL)
	if err != nil {
		return n.noMatch(rawURL, fmt.Errorf("deep link %q: %w", rawURL, err))
	}
	srv, tab, ok := n.servers.LookupTabByURL(parsed.String())
	if !ok {
		return n.noMatch(rawURL, fmt.Errorf("deep link %q: %w", rawURL, entity.ErrNoMatchingServer))
	}

	target := urlutil.Origin(srv.URL) + parsed.EscapedPath()
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	log.Info().Str("tab_id", string(tab.ID)).Str("url", target).Msg("handling deep link")

	if n.views.IsViewClosed(tab.ID) {
		return n.views.OpenClosedTab(ctx, tab.ID, target)
	}

	v := n.views.GetView(tab.ID)
	if v == nil {
		err := &entity.ConfigurationRaceError{TabID: tab.ID, Op: "deep link"}
		log.Error().Err(err).Msg("no view for deep link")
		return err
	}

	info, _ := n.servers.RemoteInfo(srv.ID)
	if v.IsReady() && info.KnownVersionAtLeast(entity.HistoryPushMinimumVersion) {
		pathName := urlutil.CleanPathName(srv.BasePath(), parsed.EscapedPath())
		if parsed.RawQuery != "" {
			pathName += "?" + parsed.RawQuery
		}
		v.SendToRenderer(view.ChannelHistoryPush, pathName)
		n.views.ShowByID(ctx, tab.ID)
		return nil
	}

	v.Reload(target)
	n.views.markPendingReveal(tab.ID)
	return nil
}

func (n *NavigationRouter) noMatch(rawURL string, err error) error {
	n.host.Send(port.StatusMessage{
		Kind: port.StatusNoMatchingServer,
		URL:  rawURL,
		Err:  err,
	})
	return err
}
