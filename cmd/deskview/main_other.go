//go:build !linux && !darwin

package main

import (
	"context"

	"github.com/bnema/deskview/internal/bootstrap"
)

// watchTerminalSize keeps the default bounds where terminal size
// reporting is unavailable.
func watchTerminalSize(context.Context, *bootstrap.Shell) {}
