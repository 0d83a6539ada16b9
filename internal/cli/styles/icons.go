package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconVersion   = "" // tag
	IconGitBranch = "" // git branch
	IconCalendar  = "" // calendar
	IconGithub    = "" // github
	IconGo        = "" // go gopher
	IconArrow     = "" // arrow right

	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info
	IconServer  = "" // server
	IconLogs    = "" // file-text
)

// Glyphs that render without a Nerd Font.
const (
	MarkCurrent = "●"
	MarkOpen    = "+"
	MarkClosed  = "-"
)
