// File: internal/capture/renderers.go
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// execRenderer shells out to an installed PDF tool. build returns the
// argument list that renders page one of pdfPath into outPath at 300 dpi.
type execRenderer struct {
	name  string
	bin   string
	build func(pdfPath, outPath string) []string
}

// DefaultRenderers returns the external tool chain in preference order:
// poppler's pdftoppm, then mupdf's mutool, then ghostscript.
func DefaultRenderers() []Renderer {
	return []Renderer{
		&execRenderer{
			name: "pdftoppm",
			bin:  "pdftoppm",
			build: func(pdfPath, outPath string) []string {
				prefix := strings.TrimSuffix(outPath, ".png")
				return []string{"-png", "-r", "300", "-f", "1", "-l", "1", "-singlefile", pdfPath, prefix}
			},
		},
		&execRenderer{
			name: "mutool",
			bin:  "mutool",
			build: func(pdfPath, outPath string) []string {
				return []string{"draw", "-o", outPath, "-r", "300", pdfPath, "1"}
			},
		},
		&execRenderer{
			name: "ghostscript",
			bin:  "gs",
			build: func(pdfPath, outPath string) []string {
				return []string{
					"-dNOPAUSE", "-dBATCH", "-dQUIET",
					"-sDEVICE=png16m", "-r300",
					"-dFirstPage=1", "-dLastPage=1",
					"-sOutputFile=" + outPath,
					pdfPath,
				}
			},
		},
	}
}

func (r *execRenderer) Name() string {
	return r.name
}

func (r *execRenderer) Render(ctx context.Context, pdfPath string) ([]byte, error) {
	binPath, err := exec.LookPath(r.bin)
	if err != nil {
		return nil, fmt.Errorf("%s not installed: %w", r.bin, err)
	}

	workDir, err := os.MkdirTemp("", "einfill-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create render dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	outPath := filepath.Join(workDir, "page.png")
	cmd := exec.CommandContext(ctx, binPath, r.build(pdfPath, outPath)...)
	if out, runErr := cmd.CombinedOutput(); runErr != nil {
		return nil, fmt.Errorf("%s failed: %w (output: %s)", r.name, runErr, strings.TrimSpace(string(out)))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%s produced no output: %w", r.name, err)
	}
	return data, nil
}
