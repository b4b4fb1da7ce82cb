package pdf

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/joseph-ayodele/pdf-extractor/internal/common"
)

// Classifier decides whether a document looks scanned (image-like) or
// text-native. Scans render with many color gradations; born-digital pages
// use a handful of flat colors. The verdict is advisory: strategy selection
// is driven by capability availability, this only feeds diagnostics.
type Classifier struct {
	cfg      common.ClassifyConfig
	renderer *Renderer
	logger   *slog.Logger
}

func NewClassifier(cfg common.ClassifyConfig, renderer *Renderer, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SampleDPI <= 0 {
		cfg.SampleDPI = 150
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 256
	}
	if cfg.ColorThreshold <= 0 {
		cfg.ColorThreshold = 1000
	}
	return &Classifier{cfg: cfg, renderer: renderer, logger: logger}
}

// IsScanned renders the first page at low resolution and counts distinct RGB
// colors. Any failure yields the conservative "not scanned" default.
func (c *Classifier) IsScanned(ctx context.Context, path string) bool {
	raw, err := c.renderer.RenderFirstPage(ctx, path, c.cfg.SampleDPI)
	if err != nil {
		c.logger.Warn("classify.render_failed", "path", path, "error", err)
		return false
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		c.logger.Warn("classify.decode_failed", "path", path, "error", err)
		return false
	}

	colors := countColors(downsample(img, c.cfg.SampleSize))
	scanned := colors > c.cfg.ColorThreshold
	c.logger.Debug("classify.result",
		"path", path, "distinct_colors", colors,
		"threshold", c.cfg.ColorThreshold, "scanned", scanned)
	return scanned
}

// downsample scales the image so its longest side is at most size px, keeping
// the color count comparable across render DPIs.
func downsample(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return img
	}
	if w >= h {
		h = h * size / w
		w = size
	} else {
		w = w * size / h
		h = size
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func countColors(img image.Image) int {
	seen := make(map[uint32]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			key := (r>>8)<<16 | (g>>8)<<8 | bl>>8
			seen[key] = struct{}{}
		}
	}
	return len(seen)
}
