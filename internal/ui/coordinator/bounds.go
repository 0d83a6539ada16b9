package coordinator

import (
	"github.com/bnema/deskview/internal/domain/entity"
	urlutil "github.com/bnema/deskview/internal/domain/url"
)

const (
	// TabBarHeight is reserved above every surface for the shell's tab bar.
	TabBarHeight = 40
	// BackBarHeight is added while a surface shows a page outside its server.
	BackBarHeight = 36
)

// ViewBounds places a surface inside the window content area.
func ViewBounds(content entity.Rect, withBackBar bool) entity.Rect {
	top := TabBarHeight
	if withBackBar {
		top += BackBarHeight
	}
	r := content.Inset(top)
	r.X = 0
	r.Y = top
	return r
}

// needsBackBar reports whether currentURL left the server.
func needsBackBar(currentURL string, server *entity.Server) bool {
	if currentURL == "" || server == nil || server.URL == nil {
		return false
	}
	u, err := urlutil.Parse(currentURL)
	if err != nil {
		return false
	}
	return !urlutil.IsInternalURL(u, server.URL)
}
