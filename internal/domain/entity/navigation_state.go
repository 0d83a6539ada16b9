package entity

// TabKey addresses a tab across restarts. Server and tab ids are
// regenerated from configuration on every start, so persisted navigation
// state is keyed by server URL and tab kind instead.
type TabKey struct {
	ServerURL string
	Kind      TabKind
}

// NavigationState is the persisted part of the registry: which server and
// tab the user was last on, and which secondary tabs they opened.
type NavigationState struct {
	CurrentServerURL string
	LastActiveTabs   map[string]TabKind
	OpenTabs         map[TabKey]bool
}

// NewNavigationState returns an empty state.
func NewNavigationState() *NavigationState {
	return &NavigationState{
		LastActiveTabs: make(map[string]TabKind),
		OpenTabs:       make(map[TabKey]bool),
	}
}
