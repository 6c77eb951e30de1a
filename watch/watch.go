// Translates filesystem change notifications for a single file into
// events on the UI thread's queue. The bridge runs on its own goroutine
// and never touches the document or the pixel buffer: it only ever posts
// a zero-payload signal, so the UI thread stays the single writer.
package watch

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileChanged is posted to the UI queue after the watched file has been
// rewritten. It carries no payload: the UI thread re-reads the file
// itself.
type FileChanged struct{}

// Poster accepts events for delivery to the UI thread.
// golang.org/x/exp/shiny/screen.Window satisfies it.
type Poster interface {
	Send(event any)
}

// DefaultDebounce is the default coalescing window for bursts of write
// events. Rapid consecutive writes within the window produce a single
// FileChanged.
const DefaultDebounce = 50 * time.Millisecond

// Bridge owns the filesystem observer and the goroutine forwarding its
// events. Both are torn down together by Close.
type Bridge struct {
	watcher  *fsnotify.Watcher
	done     chan struct{}
	path     string
	debounce time.Duration
	log      *slog.Logger

	closeOnce sync.Once
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithDebounce sets the coalescing window for write bursts.
// Zero or negative disables coalescing: every write posts an event.
func WithDebounce(d time.Duration) Option {
	return func(b *Bridge) { b.debounce = d }
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

// New starts watching path and posting FileChanged events to post.
// Only write-completion events are forwarded; renames, deletes and
// metadata-only changes are ignored. If the observer later fails, the
// bridge logs a warning and stops: no further events are posted for the
// rest of the process, but nothing crashes.
func New(path string, post Poster, opts ...Option) (*Bridge, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	b := &Bridge{
		watcher:  watcher,
		done:     make(chan struct{}),
		path:     path,
		debounce: DefaultDebounce,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run(post)
	return b, nil
}

// Close stops the observer and the forwarding goroutine. Safe to call
// more than once.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		err = b.watcher.Close()
	})
	return err
}

func (b *Bridge) run(post Poster) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-b.done:
			return
		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}
			if b.debounce <= 0 {
				b.post(post)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(b.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-fire:
					default:
					}
				}
				timer.Reset(b.debounce)
			}
		case <-fire:
			timer, fire = nil, nil
			b.post(post)
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.Warn("file watch failed, reloads disabled",
				"path", b.path, "error", err)
			return
		}
	}
}

// post delivers one FileChanged. The UI loop may already be gone, in
// which case the send can panic; that is logged and swallowed, never
// escalated.
func (b *Bridge) post(p Poster) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("could not notify ui of file change",
				"path", b.path, "reason", r)
		}
	}()
	p.Send(FileChanged{})
}
