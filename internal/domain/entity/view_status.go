package entity

// ViewStatus is the load state of a content surface.
type ViewStatus int

const (
	// ViewLoading means a load request is in flight or a retry is pending.
	ViewLoading ViewStatus = iota
	// ViewWaitingForAppReady means the page loaded and the embedded app is booting.
	ViewWaitingForAppReady
	// ViewReady means the embedded app signalled it finished initializing.
	ViewReady
	// ViewError means the surface failed and needs a reload to recover.
	ViewError
)

// String returns a human-readable representation of the status.
func (s ViewStatus) String() string {
	switch s {
	case ViewLoading:
		return "loading"
	case ViewWaitingForAppReady:
		return "waiting_for_app_ready"
	case ViewReady:
		return "ready"
	case ViewError:
		return "error"
	default:
		return "unknown"
	}
}

// NeedsLoadingScreen reports whether the overlay should cover a surface in this status.
func (s ViewStatus) NeedsLoadingScreen() bool {
	return s != ViewReady && s != ViewError
}
