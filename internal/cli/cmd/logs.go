package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/deskview/internal/cli/styles"
	"github.com/bnema/deskview/internal/logging"
)

const (
	defaultLogsLines = 50
	followInterval   = 200 * time.Millisecond
)

var (
	logsFollow bool
	logsLines  int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View the shell log",
	Long: `Show the last lines of the shell log. File logging must be enabled with
logging.enable_file_log in the config file.

Examples:
  deskview logs
  deskview logs -n 200
  deskview logs -f`,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "follow log output in real-time")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", defaultLogsLines, "number of lines to show")
}

func runLogs(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}
	path := filepath.Join(app.Config.Logging.LogDir, logging.LogFileName)
	out := cmd.OutOrStdout()

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, app.Theme.Subtle.Render("No log file at "+path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	lines, err := lastLines(file, logsLines)
	if err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	for _, line := range lines {
		fmt.Fprintln(out, colorizeLogLine(line, app.Theme))
	}
	if !logsFollow {
		return nil
	}
	return followLog(cmd, file, app.Theme)
}

// lastLines returns up to n trailing lines of r.
func lastLines(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[1:], scanner.Text())
			continue
		}
		ring = append(ring, scanner.Text())
	}
	return ring, scanner.Err()
}

// followLog prints lines appended after the current offset until the
// command's context is cancelled.
func followLog(cmd *cobra.Command, file *os.File, theme *styles.Theme) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Subtle.Render("Following logs... (Ctrl+C to stop)"))

	reader := bufio.NewReader(file)
	pending := ""
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()
	for {
		chunk, err := reader.ReadString('\n')
		pending += chunk
		if err == nil {
			fmt.Fprintln(out, colorizeLogLine(strings.TrimRight(pending, "\n"), theme))
			pending = ""
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("read log file: %w", err)
		}
		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

// logEntry is a zerolog JSON record.
type logEntry struct {
	Level     string `json:"level"`
	Time      string `json:"time"`
	Message   string `json:"message"`
	Component string `json:"component"`
	ServerID  string `json:"server_id"`
	TabID     string `json:"tab_id"`
}

// colorizeLogLine adds color based on log level.
func colorizeLogLine(line string, theme *styles.Theme) string {
	var entry logEntry
	if err := json.Unmarshal([]byte(line), &entry); err == nil && entry.Level != "" {
		return formatJSONLogLine(entry, theme)
	}

	switch {
	case containsAny(line, "ERR", "ERROR"):
		return theme.ErrorStyle.Render(line)
	case containsAny(line, "WRN", "WARN"):
		return theme.WarningStyle.Render(line)
	case containsAny(line, "DBG", "DEBUG"):
		return theme.Subtle.Render(line)
	default:
		return line
	}
}

func formatJSONLogLine(entry logEntry, theme *styles.Theme) string {
	timeStr := entry.Time
	if t, err := time.Parse(time.RFC3339, entry.Time); err == nil {
		timeStr = t.Format("15:04:05")
	}

	var levelStr string
	switch entry.Level {
	case "error", "fatal":
		levelStr = theme.ErrorStyle.Render("ERR")
	case "warn":
		levelStr = theme.WarningStyle.Render("WRN")
	case "info":
		levelStr = theme.Highlight.Render("INF")
	case "debug":
		levelStr = theme.Subtle.Render("DBG")
	case "trace":
		levelStr = theme.Subtle.Render("TRC")
	default:
		levelStr = entry.Level
	}

	parts := []string{theme.Subtle.Render(timeStr), levelStr}
	if entry.Component != "" {
		parts = append(parts, theme.Subtle.Render("["+entry.Component+"]"))
	}
	parts = append(parts, entry.Message)
	if entry.TabID != "" {
		parts = append(parts, theme.Subtle.Render("tab="+entry.TabID))
	}
	return strings.Join(parts, " ")
}

func containsAny(s string, substrs ...string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
