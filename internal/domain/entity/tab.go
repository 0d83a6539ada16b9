package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// TabID uniquely identifies a tab.
type TabID string

// TabKind is the closed set of destinations a server exposes.
type TabKind int

const (
	// TabKindMessaging is the primary tab, rooted at the server base URL.
	TabKindMessaging TabKind = iota
	// TabKindPlaybooks is a secondary application tab.
	TabKindPlaybooks
	// TabKindBoards is a secondary application tab.
	TabKindBoards
)

// AllTabKinds returns every kind in default order.
func AllTabKinds() []TabKind {
	return []TabKind{TabKindMessaging, TabKindPlaybooks, TabKindBoards}
}

// String returns the configuration name of the kind.
func (k TabKind) String() string {
	switch k {
	case TabKindMessaging:
		return "messaging"
	case TabKindPlaybooks:
		return "playbooks"
	case TabKindBoards:
		return "boards"
	default:
		return "unknown"
	}
}

// Title is the label shown in the tab bar.
func (k TabKind) Title() string {
	switch k {
	case TabKindMessaging:
		return "Channels"
	case TabKindPlaybooks:
		return "Playbooks"
	case TabKindBoards:
		return "Boards"
	default:
		return "Unknown"
	}
}

// SubPath is appended to the server base path to reach the tab.
func (k TabKind) SubPath() string {
	switch k {
	case TabKindMessaging:
		return ""
	case TabKindPlaybooks:
		return "playbooks"
	case TabKindBoards:
		return "boards"
	default:
		return ""
	}
}

// IsPrimary reports whether the kind is the server's root tab.
func (k TabKind) IsPrimary() bool {
	switch k {
	case TabKindMessaging:
		return true
	case TabKindPlaybooks, TabKindBoards:
		return false
	default:
		return false
	}
}

// ShouldNotify reports whether the tab raises notifications.
func (k TabKind) ShouldNotify() bool {
	switch k {
	case TabKindMessaging:
		return true
	case TabKindPlaybooks, TabKindBoards:
		return false
	default:
		return false
	}
}

// Supported reports whether a server advertising info serves this kind.
func (k TabKind) Supported(info RemoteInfo) bool {
	switch k {
	case TabKindMessaging:
		return true
	case TabKindPlaybooks:
		return info.HasPlaybooks
	case TabKindBoards:
		return info.HasBoards
	default:
		return false
	}
}

// ParseTabKind is the inverse of String.
func ParseTabKind(s string) (TabKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "messaging", "channels", "":
		return TabKindMessaging, nil
	case "playbooks":
		return TabKindPlaybooks, nil
	case "boards", "focalboard":
		return TabKindBoards, nil
	default:
		return TabKindMessaging, fmt.Errorf("unknown tab kind %q", s)
	}
}

// Tab is a named destination within a server.
type Tab struct {
	ID       TabID
	ServerID ServerID
	Kind     TabKind
	Order    int // default cycling order within the server
	IsOpen   bool
}

// ShouldNotify reports whether the tab raises notifications.
func (t *Tab) ShouldNotify() bool {
	return t.Kind.ShouldNotify()
}

// Name returns the display name of the tab for the given server.
func (t *Tab) Name(server *Server) string {
	if server == nil {
		return t.Kind.Title()
	}
	return server.Name + " - " + t.Kind.Title()
}

// URL returns the canonical loading URL of the tab on server.
func (t *Tab) URL(server *Server) *url.URL {
	if server == nil || server.URL == nil {
		return nil
	}
	u := *server.URL
	if sub := t.Kind.SubPath(); sub != "" {
		u.Path = server.URL.Path + sub
	}
	return &u
}

// Clone returns a copy safe to hand to other components.
func (t *Tab) Clone() *Tab {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// DefaultTabs builds the configured tab set for a new server: the primary
// tab open, the others closed.
func DefaultTabs(serverID ServerID, newID func() string) []*Tab {
	kinds := AllTabKinds()
	tabs := make([]*Tab, 0, len(kinds))
	for i, kind := range kinds {
		tabs = append(tabs, &Tab{
			ID:       TabID(newID()),
			ServerID: serverID,
			Kind:     kind,
			Order:    i,
			IsOpen:   kind.IsPrimary(),
		})
	}
	return tabs
}
