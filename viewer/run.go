package viewer

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/exp/shiny/screen"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/svgview/svgview/watch"
)

// Config carries the presentation options for Run.
type Config struct {
	// Title is the fixed window title.
	Title string

	// Size is the requested initial window size. The platform may hand
	// back something else; the first size event wins.
	Size image.Point

	// Debounce is the coalescing window for file write bursts.
	Debounce time.Duration

	// Background is composited under the (transparent-cleared) raster
	// buffer. Defaults to white.
	Background color.Color
}

// Run opens the window and drives the event loop until quit. Every
// event is handled to completion before the next one is waited on; the
// only other goroutine, the watch bridge, communicates purely by
// posting events into this loop.
func Run(s screen.Screen, st *State, cfg Config) error {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  cfg.Size.X,
		Height: cfg.Size.Y,
		Title:  cfg.Title,
	})
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	// stop the bridge before the window goes away, so shutdown never
	// leans on the bridge's send guard
	defer w.Release()
	defer st.Close()

	if err := st.Watch(w, cfg.Debounce); err != nil {
		return fmt.Errorf("starting file watch: %w", err)
	}

	var buf screen.Buffer
	defer func() {
		if buf != nil {
			buf.Release()
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case key.Event:
			if e.Code == key.CodeEscape && e.Direction == key.DirPress {
				return nil
			}

		case size.Event:
			sz := e.Size()
			if sz.X <= 0 || sz.Y <= 0 {
				// minimized; keep the last surface until we get a
				// drawable size again
				continue
			}
			if err := st.Resize(sz); err != nil {
				return err
			}
			if buf != nil {
				buf.Release()
				buf = nil
			}
			w.Send(paint.Event{})

		case watch.FileChanged:
			if err := st.Reload(); err != nil {
				st.log.Warn("reload failed, keeping last good document",
					"path", st.doc.Path(), "error", err)
				continue
			}
			w.Send(paint.Event{})

		case paint.Event:
			if buf == nil {
				buf, err = s.NewBuffer(st.Viewport())
				if err != nil {
					return fmt.Errorf("allocating window buffer: %w", err)
				}
			}
			dst := buf.RGBA()
			xdraw.Draw(dst, dst.Bounds(), image.NewUniform(cfg.Background), image.Point{}, xdraw.Src)
			xdraw.Draw(dst, dst.Bounds(), st.Surface().RGBA(), image.Point{}, xdraw.Over)
			w.Upload(image.Point{}, buf, buf.Bounds())
			w.Publish()

		case error:
			// presentation failure: leave the loop in an orderly way
			st.log.Warn("window error, exiting", "error", e)
			return nil
		}
	}
}
