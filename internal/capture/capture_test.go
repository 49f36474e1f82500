// File: internal/capture/capture_test.go
package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/einfill/internal/browser/browsertest"
)

// stubRenderer is a scriptable Renderer.
type stubRenderer struct {
	name    string
	data    []byte
	err     error
	calls   int
	sawPath string
}

func (s *stubRenderer) Name() string { return s.name }

func (s *stubRenderer) Render(ctx context.Context, pdfPath string) ([]byte, error) {
	s.calls++
	s.sawPath = pdfPath
	return s.data, s.err
}

func TestCapturePNGDirectScreenshot(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.NewFakePage()
	page.ScreenshotData = []byte("png-image")
	renderer := &stubRenderer{name: "stub"}
	c := New(page, dir, "http://localhost:8000/", zaptest.NewLogger(t), renderer)

	path, url, err := c.CapturePNG(context.Background(), "print_rec-1_1700000000.png")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "print_rec-1_1700000000.png"), path)
	assert.Equal(t, "http://localhost:8000/static/print_rec-1_1700000000.png", url)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("png-image"), data)
	assert.Zero(t, renderer.calls, "renderers are untouched when the screenshot works")
}

func TestCapturePNGExtensionNormalized(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.NewFakePage()
	c := New(page, dir, "http://localhost:8000", zaptest.NewLogger(t), &stubRenderer{name: "stub"})

	path, url, err := c.CapturePNG(context.Background(), "print_rec-2_1.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "print_rec-2_1.png"), path)
	assert.Equal(t, "http://localhost:8000/static/print_rec-2_1.png", url)
}

func TestCapturePNGFallsBackThroughRenderers(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.NewFakePage()
	page.ScreenshotErr = errors.New("tab crashed")
	page.PDFData = []byte("%PDF-1.4 page")

	failing := &stubRenderer{name: "broken", err: errors.New("tool missing")}
	working := &stubRenderer{name: "working", data: []byte("rendered-png")}
	c := New(page, dir, "http://localhost:8000", zaptest.NewLogger(t), failing, working)

	path, _, err := c.CapturePNG(context.Background(), "print_rec-3_2.png")
	require.NoError(t, err)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, []byte("rendered-png"), data)

	// The temporary PDF handed to the renderers is cleaned up afterwards.
	assert.NoFileExists(t, working.sawPath)
}

func TestCapturePNGRendererExhaustion(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.NewFakePage()
	page.ScreenshotErr = errors.New("tab crashed")

	r1 := &stubRenderer{name: "a", err: errors.New("no")}
	r2 := &stubRenderer{name: "b", err: errors.New("also no")}
	c := New(page, dir, "http://localhost:8000", zaptest.NewLogger(t), r1, r2)

	path, url, err := c.CapturePNG(context.Background(), "print_rec-4_3.png")
	require.Error(t, err)
	assert.Empty(t, path)
	assert.Empty(t, url)
	assert.Contains(t, err.Error(), "all pdf conversion methods failed")

	// No stray temp PDFs survive.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestCapturePNGPDFPrintFailure(t *testing.T) {
	dir := t.TempDir()
	page := browsertest.NewFakePage()
	page.ScreenshotErr = errors.New("tab crashed")
	page.PDFErr = errors.New("print denied")
	c := New(page, dir, "http://localhost:8000", zaptest.NewLogger(t), &stubRenderer{name: "stub"})

	_, _, err := c.CapturePNG(context.Background(), "print_rec-5_4.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf print failed")
}

func TestDefaultRenderersOrder(t *testing.T) {
	renderers := DefaultRenderers()
	require.Len(t, renderers, 3)
	assert.Equal(t, "pdftoppm", renderers[0].Name())
	assert.Equal(t, "mutool", renderers[1].Name())
	assert.Equal(t, "ghostscript", renderers[2].Name())
}
