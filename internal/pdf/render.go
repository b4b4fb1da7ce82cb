package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/joseph-ayodele/pdf-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-extractor/internal/runner"
)

// Renderer rasterizes PDF pages to PNG files via pdftoppm. A failed render is
// retried once at the fallback DPI before giving up.
type Renderer struct {
	cfg    common.ExtractConfig
	runner runner.Runner
	logger *slog.Logger
}

func NewRenderer(cfg common.ExtractConfig, r runner.Runner, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.Exec{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = 300
	}
	if cfg.FallbackDPI <= 0 {
		cfg.FallbackDPI = 150
	}
	return &Renderer{cfg: cfg, runner: r, logger: logger}
}

// RenderPages renders every page (capped at cfg.MaxPages when set) and returns
// the PNG paths in page order plus a cleanup func for the temp directory.
func (r *Renderer) RenderPages(ctx context.Context, path string) ([]string, func(), error) {
	return r.render(ctx, path, 0, 0)
}

// RenderFirstPage renders only page 1 at the given DPI and returns the PNG
// bytes. Used by the document classifier.
func (r *Renderer) RenderFirstPage(ctx context.Context, path string, dpi int) ([]byte, error) {
	pages, cleanup, err := r.renderAt(ctx, path, dpi, 1, 1)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}
	return os.ReadFile(pages[0])
}

func (r *Renderer) render(ctx context.Context, path string, first, last int) ([]string, func(), error) {
	pages, cleanup, err := r.renderAt(ctx, path, r.cfg.RenderDPI, first, last)
	if err == nil {
		return pages, cleanup, nil
	}
	r.logger.Warn("pdf.render.retry",
		"path", path, "dpi", r.cfg.RenderDPI, "fallback_dpi", r.cfg.FallbackDPI, "error", err)
	pages, cleanup, err2 := r.renderAt(ctx, path, r.cfg.FallbackDPI, first, last)
	if err2 != nil {
		return nil, nil, common.NewAppError("CONVERSION_ERROR",
			fmt.Sprintf("render %s failed at %d and %d dpi", filepath.Base(path), r.cfg.RenderDPI, r.cfg.FallbackDPI),
			common.ErrConversion)
	}
	return pages, cleanup, nil
}

func (r *Renderer) renderAt(ctx context.Context, path string, dpi, first, last int) ([]string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "px-pp-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("pdf.render.cleanup_failed", "dir", tmpDir, "error", rmErr)
		}
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", dpi), "-png"}
	if first > 0 {
		args = append(args, "-f", fmt.Sprintf("%d", first))
	}
	if last > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", last))
	}
	args = append(args, path, prefix)

	// pdftoppm -r <dpi> -png [-f N -l N] <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, args...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm: %w (%s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm produced no images")
	}
	return matches, cleanup, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
