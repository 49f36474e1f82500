// File: internal/capture/capture.go
// Confirmation-page artifact capture. A direct screenshot is the primary
// path; when it fails the page is printed to PDF and rasterized by the
// first available renderer.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/einfill/internal/browser"
)

// Renderer rasterizes the first page of a PDF file to PNG bytes.
type Renderer interface {
	Name() string
	Render(ctx context.Context, pdfPath string) ([]byte, error)
}

// Capturer writes page captures into the static artifact directory.
type Capturer struct {
	page      browser.Page
	renderers []Renderer
	staticDir string
	hostURL   string
	logger    *zap.Logger
}

// New builds a capturer. With no renderers given, the standard external
// tool chain (pdftoppm, mutool, ghostscript) is used.
func New(page browser.Page, staticDir, hostURL string, logger *zap.Logger, renderers ...Renderer) *Capturer {
	if len(renderers) == 0 {
		renderers = DefaultRenderers()
	}
	return &Capturer{
		page:      page,
		renderers: renderers,
		staticDir: staticDir,
		hostURL:   hostURL,
		logger:    logger,
	}
}

// CapturePNG captures the current page as a PNG under the static directory
// and returns the local path plus the public download URL.
func (c *Capturer) CapturePNG(ctx context.Context, filename string) (string, string, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".png") {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".png"
	}
	if err := os.MkdirAll(c.staticDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create static dir: %w", err)
	}
	pngPath := filepath.Join(c.staticDir, filename)

	if data, err := c.page.Screenshot(ctx); err == nil {
		if writeErr := os.WriteFile(pngPath, data, 0o644); writeErr != nil {
			return "", "", fmt.Errorf("failed to write screenshot: %w", writeErr)
		}
		c.logger.Info("Captured page via direct screenshot.", zap.String("path", pngPath))
		return pngPath, c.publicURL(filename), nil
	} else {
		c.logger.Warn("Direct screenshot failed, falling back to PDF conversion.", zap.Error(err))
	}

	data, err := c.renderViaPDF(ctx, filename)
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(pngPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write converted png: %w", err)
	}
	c.logger.Info("Captured page via PDF conversion.", zap.String("path", pngPath))
	return pngPath, c.publicURL(filename), nil
}

// renderViaPDF prints the page to a temporary PDF and tries each renderer
// in order. The temporary file is removed regardless of outcome.
func (c *Capturer) renderViaPDF(ctx context.Context, filename string) ([]byte, error) {
	pdfData, err := c.page.PrintToPDF(ctx)
	if err != nil {
		return nil, fmt.Errorf("pdf print failed: %w", err)
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	pdfPath := filepath.Join(c.staticDir, "temp_pdf_"+base+".pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write temp pdf: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(pdfPath); rmErr != nil {
			c.logger.Warn("Failed to remove temporary PDF.", zap.String("path", pdfPath), zap.Error(rmErr))
		}
	}()

	for _, r := range c.renderers {
		png, renderErr := r.Render(ctx, pdfPath)
		if renderErr != nil {
			c.logger.Warn("PDF renderer failed, trying next.",
				zap.String("renderer", r.Name()), zap.Error(renderErr))
			continue
		}
		c.logger.Info("PDF rendered to PNG.", zap.String("renderer", r.Name()))
		return png, nil
	}
	return nil, fmt.Errorf("all pdf conversion methods failed")
}

func (c *Capturer) publicURL(filename string) string {
	return strings.TrimRight(c.hostURL, "/") + "/static/" + filename
}
