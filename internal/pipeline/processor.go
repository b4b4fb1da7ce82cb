// Package pipeline holds the extraction orchestrator: it picks a strategy
// from the configured capabilities, drives the fallback chain and assembles
// the final result. Expected failures come back as data in the Result;
// nothing escapes the Process boundary.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/ai"
	"github.com/joseph-ayodele/pdf-extractor/internal/pdf"
	"github.com/joseph-ayodele/pdf-extractor/internal/tables"
)

// Capabilities describes which extraction backends were configured at
// process start. Strategy selection is driven by this, not by the advisory
// classifier verdict.
type Capabilities struct {
	AIAvailable  bool
	OCRAvailable bool
}

// Classifier is the advisory scanned-document detector.
type Classifier interface {
	IsScanned(ctx context.Context, path string) bool
}

// TextExtractor is the no-network text-layer path.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (pdf.TextResult, error)
}

// AIExtractor is the remote vision/document path with its two modes.
type AIExtractor interface {
	ExtractDirect(ctx context.Context, path string) (ai.Output, error)
	ExtractPerPage(ctx context.Context, path string) (ai.Output, error)
}

type Orchestrator struct {
	caps       Capabilities
	minTextLen int
	classifier Classifier
	textLayer  TextExtractor
	aix        AIExtractor
	logger     *slog.Logger
}

func NewOrchestrator(
	caps Capabilities,
	minTextLen int,
	classifier Classifier,
	textLayer TextExtractor,
	aix AIExtractor,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextLen <= 0 {
		minTextLen = 10
	}
	return &Orchestrator{
		caps:       caps,
		minTextLen: minTextLen,
		classifier: classifier,
		textLayer:  textLayer,
		aix:        aix,
		logger:     logger,
	}
}

// Process runs the fallback chain for one document:
//
//  1. AI configured: direct whole-document mode, then per-page image mode;
//  2. otherwise the standard text layer, with per-page OCR as the secondary
//     fallback when the text layer yields too little.
//
// Unexpected failures are converted to a failed Result, never propagated.
func (o *Orchestrator) Process(ctx context.Context, path string) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline.panic", "path", path, "panic", r)
			res = failure(constants.MethodNone, fmt.Sprintf("unexpected failure: %v", r))
		}
		o.logger.Info("pipeline.done",
			"path", path,
			"success", res.Success,
			"method", res.Method,
			"pages", res.PageCount,
			"chars", len(res.Text),
			"records", len(res.Records),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()

	if o.classifier != nil {
		// advisory only: informs diagnostics, not strategy selection
		scanned := o.classifier.IsScanned(ctx, path)
		o.logger.Info("pipeline.classified", "path", path, "scanned", scanned)
	}

	if o.caps.AIAvailable {
		out, err := o.aix.ExtractDirect(ctx, path)
		if err == nil {
			return fromOutput(out)
		}
		o.logger.Warn("pipeline.direct_failed", "path", path, "error", err)

		out, err = o.aix.ExtractPerPage(ctx, path)
		if err == nil {
			return fromOutput(out)
		}
		o.logger.Warn("pipeline.per_page_failed", "path", path, "error", err)
	}

	return o.standard(ctx, path)
}

func (o *Orchestrator) standard(ctx context.Context, path string) Result {
	tr, err := o.textLayer.Extract(ctx, path)
	if err != nil {
		return failure(constants.MethodStandard, "standard extraction failed: "+err.Error())
	}

	if utf8.RuneCountInString(strings.TrimSpace(tr.Text)) < o.minTextLen {
		if o.caps.OCRAvailable {
			out, perr := o.aix.ExtractPerPage(ctx, path)
			if perr == nil && strings.TrimSpace(out.Text) != "" {
				return fromOutput(out)
			}
			if perr != nil {
				o.logger.Warn("pipeline.ocr_fallback_failed", "path", path, "error", perr)
			}
		}
		return failure(constants.MethodStandard, fmt.Sprintf(
			"no usable text extracted (%d characters); the document may be password-protected or image-only",
			utf8.RuneCountInString(strings.TrimSpace(tr.Text))))
	}

	return Result{
		Success:   true,
		Text:      tr.Text,
		PageCount: tr.Pages,
		Records:   tables.FromText(tr.Text),
		Method:    constants.MethodStandard,
	}
}

func fromOutput(out ai.Output) Result {
	return Result{
		Success:     true,
		Text:        out.Text,
		PageCount:   out.Pages,
		Records:     out.Records,
		Method:      out.Method,
		PageMethods: out.PageMethods,
	}
}
