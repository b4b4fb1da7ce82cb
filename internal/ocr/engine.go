package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pdf-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-extractor/internal/runner"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-]{3,}\s*$`)
)

// Engine is the local OCR adapter: lower accuracy than the AI service, used
// as the per-page fallback. Recognition failures and unavailability both
// surface as empty text, never as errors.
type Engine struct {
	cfg       common.OCRConfig
	runner    runner.Runner
	logger    *slog.Logger
	available bool
}

func NewEngine(cfg common.OCRConfig, r runner.Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.Exec{}
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "rus+eng"
	}
	return &Engine{
		cfg:       cfg,
		runner:    r,
		logger:    logger,
		available: runner.Available(cfg.Tesseract),
	}
}

// Available reports whether the tesseract binary was found at startup.
func (e *Engine) Available() bool {
	return e.available
}

// RecognizePage runs OCR on a rendered page image and returns normalized
// text, or "" when the engine is unavailable or recognition fails.
func (e *Engine) RecognizePage(ctx context.Context, imagePath string) string {
	if !e.available {
		return ""
	}

	path := imagePath
	if e.cfg.Enhance {
		if enhanced, err := e.enhanceToTemp(imagePath); err == nil {
			path = enhanced
			defer os.Remove(enhanced)
		} else {
			e.logger.Warn("ocr.enhance_failed", "image", imagePath, "error", err)
		}
	}

	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}

	// tesseract <file> stdout -l rus+eng --oem 3 --psm 6
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		e.logger.Warn("ocr.tesseract_failed",
			"image", imagePath, "error", err, "stderr", strings.TrimSpace(string(errb)))
		return ""
	}
	return Normalize(string(out))
}

// enhanceToTemp writes a contrast/sharpness-boosted, denoised copy of the
// page image next to the original and returns its path.
func (e *Engine) enhanceToTemp(imagePath string) (string, error) {
	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	enhanced := Enhance(img)

	f, err := os.CreateTemp(filepath.Dir(imagePath), "enh-*.png")
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, enhanced); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Normalize collapses noisy whitespace from OCR output. Conservative: keeps
// line breaks; collapses >2 newlines into a single blank line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
