package coordinator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/ui/coordinator"
	"github.com/bnema/deskview/internal/ui/view/viewtest"
)

func TestLoadingScreen_TriState(t *testing.T) {
	overlay := &viewtest.Overlay{}
	ls := coordinator.NewLoadingScreen(testContext(), overlay)
	assert.True(t, ls.IsHidden())

	ls.Fade()
	ls.AnimationFinished()
	assert.Equal(t, coordinator.LoadingHidden, ls.State())
	assert.Zero(t, overlay.Fades, "hidden overlay does not fade")
	assert.Zero(t, overlay.Hides)

	ls.Show()
	ls.Show()
	assert.Equal(t, coordinator.LoadingVisible, ls.State())
	assert.Equal(t, 1, overlay.Shows)

	ls.Fade()
	ls.Fade()
	assert.Equal(t, coordinator.LoadingFading, ls.State())
	assert.Equal(t, 1, overlay.Fades)

	ls.AnimationFinished()
	ls.AnimationFinished()
	assert.True(t, ls.IsHidden())
	assert.Equal(t, 1, overlay.Hides)
}

func TestLoadingScreen_ShowDuringFade(t *testing.T) {
	overlay := &viewtest.Overlay{}
	ls := coordinator.NewLoadingScreen(testContext(), overlay)

	ls.Show()
	ls.Fade()
	ls.Show()
	assert.Equal(t, coordinator.LoadingVisible, ls.State())

	// the first fade's animation ends after the re-show
	ls.AnimationFinished()
	assert.Equal(t, coordinator.LoadingVisible, ls.State())
	assert.Zero(t, overlay.Hides)
	assert.Equal(t, 2, overlay.Shows)
}

func TestLoadingScreen_BoundsAndTheme(t *testing.T) {
	overlay := &viewtest.Overlay{}
	ls := coordinator.NewLoadingScreen(testContext(), overlay)

	rect := entity.Rect{Width: 800, Height: 600}
	ls.SetBounds(rect)
	ls.SetDarkMode(true)

	assert.Equal(t, rect, overlay.Bounds)
	assert.True(t, overlay.Dark)
}

func TestLoadingState_String(t *testing.T) {
	tests := []struct {
		state coordinator.LoadingState
		want  string
	}{
		{coordinator.LoadingHidden, "hidden"},
		{coordinator.LoadingVisible, "visible"},
		{coordinator.LoadingFading, "fading"},
		{coordinator.LoadingState(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestViewBounds(t *testing.T) {
	content := entity.Rect{Width: 1000, Height: 800}

	assert.Equal(t, entity.Rect{X: 0, Y: coordinator.TabBarHeight, Width: 1000, Height: 800 - coordinator.TabBarHeight},
		coordinator.ViewBounds(content, false))

	top := coordinator.TabBarHeight + coordinator.BackBarHeight
	assert.Equal(t, entity.Rect{X: 0, Y: top, Width: 1000, Height: 800 - top},
		coordinator.ViewBounds(content, true))
}
