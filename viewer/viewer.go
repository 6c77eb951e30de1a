// Ties the document, the raster surface and the file watch bridge
// together under the window event loop.
package viewer

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/svgview/svgview/document"
	"github.com/svgview/svgview/raster"
	"github.com/svgview/svgview/watch"
)

// State holds everything the UI thread owns: the current document, the
// viewport size, and the surface the document is rasterized into. The
// watch bridge only ever posts signals into the event queue, so no
// locking is needed around any of these.
//
// All methods must be called from the event loop goroutine.
type State struct {
	doc      *document.Document
	surface  *raster.Surface
	viewport image.Point
	bridge   *watch.Bridge // nil for stdin documents
	log      *slog.Logger
}

// StateOption configures a State during creation.
type StateOption func(*State)

// WithLogger sets the logger used for steady-state warnings.
func WithLogger(l *slog.Logger) StateOption {
	return func(st *State) { st.log = l }
}

// NewState allocates the surface at the initial viewport size and
// rasterizes the document into it. Any failure here is a startup
// failure: the caller aborts.
func NewState(doc *document.Document, size image.Point, opts ...StateOption) (*State, error) {
	surface, err := raster.New(size.X, size.Y)
	if err != nil {
		return nil, fmt.Errorf("allocating %v surface: %w", size, err)
	}
	st := &State{
		doc:      doc,
		surface:  surface,
		viewport: size,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	if err := st.surface.Render(doc.Icon); err != nil {
		return nil, fmt.Errorf("rasterizing document: %w", err)
	}
	return st, nil
}

// Watch starts the file watch bridge posting into post. It does nothing
// for documents read from standard input: those can never reload.
func (st *State) Watch(post watch.Poster, debounce time.Duration) error {
	if !st.doc.FileBacked() {
		return nil
	}
	bridge, err := watch.New(st.doc.Path(), post,
		watch.WithDebounce(debounce), watch.WithLogger(st.log))
	if err != nil {
		return err
	}
	st.bridge = bridge
	return nil
}

// Watching reports whether a file watch bridge is active.
func (st *State) Watching() bool { return st.bridge != nil }

// Close stops the watch bridge, if any.
func (st *State) Close() {
	if st.bridge != nil {
		st.bridge.Close()
		st.bridge = nil
	}
}

// Document returns the current document.
func (st *State) Document() *document.Document { return st.doc }

// Surface returns the current raster surface. The returned surface is
// replaced wholesale by Resize.
func (st *State) Surface() *raster.Surface { return st.surface }

// Viewport returns the current viewport size. It always matches the
// surface dimensions.
func (st *State) Viewport() image.Point { return st.viewport }

// Resize reallocates the surface at the new size and re-rasterizes the
// existing document into it. A resize to the current size is a no-op.
func (st *State) Resize(size image.Point) error {
	if size == st.viewport {
		return nil
	}
	surface, err := raster.New(size.X, size.Y)
	if err != nil {
		return fmt.Errorf("resizing to %v: %w", size, err)
	}
	st.surface = surface
	st.viewport = size
	if err := st.surface.Render(st.doc.Icon); err != nil {
		return fmt.Errorf("rasterizing document: %w", err)
	}
	return nil
}

// Reload re-reads and re-parses the backing file, then rasterizes the
// new document at the current viewport. On failure the last good
// document stays in place and on screen; the caller decides whether the
// error is worth more than a warning.
func (st *State) Reload() error {
	doc, err := st.doc.Reload()
	if err != nil {
		return err
	}
	st.doc = doc
	if err := st.surface.Render(st.doc.Icon); err != nil {
		return fmt.Errorf("rasterizing document: %w", err)
	}
	return nil
}
