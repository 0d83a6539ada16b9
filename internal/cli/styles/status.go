package styles

import (
	"fmt"
	"strings"

	"github.com/bnema/deskview/internal/application/port"
)

// StatusLine renders a status update as one line of terminal output.
// label names the tab; the tab id is used when it is empty.
func StatusLine(theme *Theme, msg port.StatusMessage, label string) string {
	if label == "" {
		label = string(msg.TabID)
	}
	kind := theme.BadgeMuted.Render(string(msg.Kind))
	var detail string

	switch msg.Kind {
	case port.StatusLoadSuccess:
		kind = theme.Badge.Render(string(msg.Kind))
		detail = msg.URL
	case port.StatusLoadRetry:
		kind = theme.WarningStyle.Render(IconWarning + " " + string(msg.Kind))
		detail = fmt.Sprintf("retrying at %s", msg.RetryAt.Format("15:04:05"))
		if msg.Err != nil {
			detail += ": " + msg.Err.Error()
		}
	case port.StatusLoadFailed, port.StatusIncompatibleServer:
		kind = theme.ErrorStyle.Render(IconX + " " + string(msg.Kind))
		if msg.Err != nil {
			detail = msg.Err.Error()
		}
	case port.StatusActiveViewChanged:
		kind = theme.Highlight.Render(IconArrow + " " + string(msg.Kind))
	case port.StatusNoMatchingServer, port.StatusTargetURLChanged:
		detail = msg.URL
	case port.StatusTitleChanged:
		detail = msg.Title
	case port.StatusUnreadChanged:
		detail = fmt.Sprintf("unread=%t mentions=%d", msg.Unread, msg.Mentions)
	}

	parts := []string{kind}
	if label != "" {
		parts = append(parts, theme.Title.Render(label))
	}
	if detail != "" {
		parts = append(parts, theme.Subtle.Render(detail))
	}
	return strings.Join(parts, " ")
}
