//go:build linux || darwin

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"

	"github.com/bnema/deskview/internal/domain/entity"
)

func TestTerminalBounds(t *testing.T) {
	tests := []struct {
		name string
		ws   unix.Winsize
		want entity.Rect
	}{
		{name: "pixels reported", ws: unix.Winsize{Row: 50, Col: 200, Xpixel: 1600, Ypixel: 900}, want: entity.Rect{Width: 1600, Height: 900}},
		{name: "cells only", ws: unix.Winsize{Row: 50, Col: 200}, want: entity.Rect{Width: 1600, Height: 800}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, terminalBounds(&tt.ws))
		})
	}
}
