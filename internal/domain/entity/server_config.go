package entity

// ServerConfig is one server entry of the configuration snapshot.
type ServerConfig struct {
	Name       string
	URL        string
	Predefined bool
	Order      int
	Tabs       []TabConfig
}

// TabConfig is one tab entry of a server configuration. Missing kinds
// fall back to the default tab set.
type TabConfig struct {
	Kind   TabKind
	Order  int
	IsOpen bool
}

// ServerInput carries user-provided server data for add/edit.
type ServerInput struct {
	Name string
	URL  string
}
