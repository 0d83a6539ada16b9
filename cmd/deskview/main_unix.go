//go:build linux || darwin

package main

import (
	"context"
	"os"
	"os/signal"
	"runtime/debug"

	"golang.org/x/sys/unix"

	"github.com/bnema/deskview/internal/bootstrap"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
)

// Fallback cell size when the terminal does not report pixels.
const (
	cellWidth  = 8
	cellHeight = 16
)

func init() {
	debug.SetTraceback("crash")
}

// watchTerminalSize treats the controlling terminal as the window: its
// size becomes the content bounds and SIGWINCH becomes a resize.
func watchTerminalSize(ctx context.Context, shell *bootstrap.Shell) {
	fd := int(os.Stdout.Fd())
	if _, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ); err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("stdout is not a terminal, keeping default bounds")
		return
	}

	resize := func() {
		ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
		if err != nil {
			return
		}
		bounds := terminalBounds(ws)
		shell.Loop.Post(func() {
			shell.Host.Resize(bounds)
			shell.Window.HandleResize(bounds)
		})
	}
	resize()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGWINCH)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				resize()
			}
		}
	}()
}

func terminalBounds(ws *unix.Winsize) entity.Rect {
	width, height := int(ws.Xpixel), int(ws.Ypixel)
	if width == 0 || height == 0 {
		width = int(ws.Col) * cellWidth
		height = int(ws.Row) * cellHeight
	}
	return entity.Rect{Width: width, Height: height}
}
