package viewer

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svgview/svgview/document"
	"github.com/svgview/svgview/watch"
)

const squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<rect width="10" height="10" fill="#000"/>
</svg>`

const twoRectsSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
<rect width="5" height="10" fill="#f00"/>
<rect x="5" width="5" height="10" fill="#0f0"/>
</svg>`

const brokenSVG = `<svg xmlns="http://www.w3.org/2000/svg"><rect`

func fileDocument(t *testing.T, content string) (*document.Document, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.svg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	doc, err := document.FromFile(path)
	require.NoError(t, err)
	return doc, path
}

func TestNewState(t *testing.T) {
	doc, _ := fileDocument(t, squareSVG)

	st, err := NewState(doc, image.Pt(100, 80))
	require.NoError(t, err)

	assert.Equal(t, image.Pt(100, 80), st.Viewport())
	assert.Equal(t, st.Viewport(), st.Surface().Size())
	assert.Len(t, st.Surface().RGBA().Pix, 100*80*4)
	assert.False(t, st.Watching())
}

func TestNewStateZeroSize(t *testing.T) {
	doc, _ := fileDocument(t, squareSVG)
	_, err := NewState(doc, image.Pt(0, 80))
	require.Error(t, err)
}

func TestResize(t *testing.T) {
	doc, _ := fileDocument(t, squareSVG)
	st, err := NewState(doc, image.Pt(40, 40))
	require.NoError(t, err)

	require.NoError(t, st.Resize(image.Pt(50, 60)))
	assert.Equal(t, image.Pt(50, 60), st.Viewport())
	assert.Len(t, st.Surface().RGBA().Pix, 50*60*4)

	// resizing to the current size keeps the surface
	before := st.Surface()
	require.NoError(t, st.Resize(image.Pt(50, 60)))
	assert.Same(t, before, st.Surface())

	require.Error(t, st.Resize(image.Pt(-1, 10)))
	// failed resize leaves viewport and surface untouched
	assert.Equal(t, image.Pt(50, 60), st.Viewport())
}

func TestReloadReplacesDocumentWholesale(t *testing.T) {
	doc, path := fileDocument(t, squareSVG)
	st, err := NewState(doc, image.Pt(20, 20))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(twoRectsSVG), 0o644))
	require.NoError(t, st.Reload())

	assert.NotSame(t, doc, st.Document())
	assert.Len(t, st.Document().Icon.SVGPaths, 2)
}

func TestReloadKeepsLastGoodDocument(t *testing.T) {
	doc, path := fileDocument(t, squareSVG)
	st, err := NewState(doc, image.Pt(20, 20))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(brokenSVG), 0o644))
	require.ErrorIs(t, st.Reload(), document.ErrParse)

	// the old document is still current and still renders
	assert.Same(t, doc, st.Document())
	require.NoError(t, st.Surface().Render(st.Document().Icon))

	// and a later good write recovers
	require.NoError(t, os.WriteFile(path, []byte(twoRectsSVG), 0o644))
	require.NoError(t, st.Reload())
	assert.Len(t, st.Document().Icon.SVGPaths, 2)
}

type recorder struct {
	events chan any
}

func (r *recorder) Send(event any) { r.events <- event }

func TestWatchFileBacked(t *testing.T) {
	doc, path := fileDocument(t, squareSVG)
	st, err := NewState(doc, image.Pt(20, 20))
	require.NoError(t, err)
	defer st.Close()

	rec := &recorder{events: make(chan any, 8)}
	require.NoError(t, st.Watch(rec, 10*time.Millisecond))
	require.True(t, st.Watching())

	require.NoError(t, os.WriteFile(path, []byte(twoRectsSVG), 0o644))
	select {
	case e := <-rec.events:
		assert.IsType(t, watch.FileChanged{}, e)
	case <-time.After(5 * time.Second):
		t.Fatal("no file change event after write")
	}
}

// closing the state stops the bridge first, so nothing is posted to an
// event queue that is about to disappear
func TestCloseStopsWatchDelivery(t *testing.T) {
	doc, path := fileDocument(t, squareSVG)
	st, err := NewState(doc, image.Pt(20, 20))
	require.NoError(t, err)

	rec := &recorder{events: make(chan any, 8)}
	require.NoError(t, st.Watch(rec, 0))
	require.True(t, st.Watching())

	st.Close()
	assert.False(t, st.Watching())

	require.NoError(t, os.WriteFile(path, []byte(twoRectsSVG), 0o644))
	select {
	case e := <-rec.events:
		t.Fatalf("event %T delivered after Close", e)
	case <-time.After(300 * time.Millisecond):
	}
}

// stdin documents never establish a watch
func TestWatchStdinBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.svg")
	require.NoError(t, os.WriteFile(path, []byte(squareSVG), 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc, err := document.FromReader(f)
	require.NoError(t, err)

	st, err := NewState(doc, image.Pt(20, 20))
	require.NoError(t, err)

	rec := &recorder{events: make(chan any, 8)}
	require.NoError(t, st.Watch(rec, 10*time.Millisecond))
	assert.False(t, st.Watching())
	st.Close()
}
