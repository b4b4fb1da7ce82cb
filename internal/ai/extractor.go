// Package ai implements the remote vision/document extraction backends:
// a per-page image mode with local OCR fallback, and a direct whole-document
// mode running the 3-stage refine-and-structure protocol.
package ai

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// PageRenderer rasterizes a document into per-page images.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string) (pages []string, cleanup func(), err error)
}

// OCREngine is the local fallback recognizer. Empty text means "no result",
// it is never an error.
type OCREngine interface {
	Available() bool
	RecognizePage(ctx context.Context, imagePath string) string
}

// Output is what either extraction mode produces. Text may legitimately be
// empty; the orchestrator owns the usability judgment.
type Output struct {
	Text        string
	Pages       int
	Records     []record.Record
	Method      string
	PageMethods []string // per-page breakdown, only set by per-page mode
}

// Extractor bundles the remote client with the renderer and the local OCR
// fallback.
type Extractor struct {
	client   *Client
	renderer PageRenderer
	ocr      OCREngine
	logger   *slog.Logger
}

func NewExtractor(client *Client, renderer PageRenderer, ocr OCREngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, renderer: renderer, ocr: ocr, logger: logger}
}

func (e *Extractor) aiAvailable() bool {
	return e.client != nil && e.client.Available()
}

func (e *Extractor) ocrAvailable() bool {
	return e.ocr != nil && e.ocr.Available()
}
