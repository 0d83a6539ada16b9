package headless

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/deskview/internal/application/port"
	"github.com/bnema/deskview/internal/domain/entity"
	"github.com/bnema/deskview/internal/logging"
)

// FadeDuration is how long the simulated fade animation takes.
const FadeDuration = 250 * time.Millisecond

// Overlay is a port.LoadingOverlay that logs transitions and reports the
// end of each fade through onFadeDone, scheduled on the main loop.
type Overlay struct {
	log        zerolog.Logger
	scheduler  port.Scheduler
	onFadeDone func()
	fade       port.Timer

	visible bool
	dark    bool
	bounds  entity.Rect
}

var _ port.LoadingOverlay = (*Overlay)(nil)

// NewOverlay creates an overlay. All methods run on the main loop.
func NewOverlay(ctx context.Context, scheduler port.Scheduler, onFadeDone func()) *Overlay {
	return &Overlay{
		log:        logging.FromContext(ctx).With().Str("component", "loading-screen").Logger(),
		scheduler:  scheduler,
		onFadeDone: onFadeDone,
	}
}

func (o *Overlay) Show() {
	o.stopFade()
	o.visible = true
	o.log.Debug().Bool("dark", o.dark).Msg("loading screen shown")
}

func (o *Overlay) StartFade() {
	o.stopFade()
	o.log.Debug().Msg("loading screen fading")
	o.fade = o.scheduler.AfterFunc(FadeDuration, func() {
		o.fade = nil
		if o.onFadeDone != nil {
			o.onFadeDone()
		}
	})
}

func (o *Overlay) Hide() {
	o.stopFade()
	o.visible = false
	o.log.Debug().Msg("loading screen hidden")
}

func (o *Overlay) SetBounds(rect entity.Rect) { o.bounds = rect }

func (o *Overlay) SetDarkMode(dark bool) { o.dark = dark }

// Visible reports whether the overlay is shown.
func (o *Overlay) Visible() bool { return o.visible }

func (o *Overlay) stopFade() {
	if o.fade != nil {
		o.fade.Stop()
		o.fade = nil
	}
}
