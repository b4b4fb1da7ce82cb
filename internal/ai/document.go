package ai

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// ExtractDirect runs the 3-stage protocol over the original document bytes:
//
//  1. raw verbatim transcription of the whole document;
//  2. verification pass fixing only character-level recognition artifacts,
//     with the original document re-attached;
//  3. structuring pass turning the verified text (text only) into a JSON
//     array of canonical records.
//
// An empty stage-1 transcript aborts the pipeline. A malformed stage-3
// response degrades to an empty record list — it never discards the text.
// The document is treated as one logical unit, so Pages is always 1.
func (e *Extractor) ExtractDirect(ctx context.Context, path string) (Output, error) {
	if !e.aiAvailable() {
		return Output{}, fmt.Errorf("ai service not configured")
	}

	doc, err := os.ReadFile(path)
	if err != nil {
		return Output{}, fmt.Errorf("read document: %w", err)
	}
	filename := filepath.Base(path)

	// Stage 1: raw extraction.
	transcript, err := e.client.complete(ctx, "stage1-raw",
		[]map[string]any{filePart(filename, doc), textPart(promptStage1Raw)})
	if err != nil {
		return Output{}, fmt.Errorf("stage 1 (raw extraction): %w", err)
	}
	if transcript == "" {
		return Output{}, fmt.Errorf("stage 1 (raw extraction): empty transcript")
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	// Stage 2: verification pass. A failure here is recoverable — the
	// stage-1 transcript stands.
	verified := transcript
	if corrected, err := e.client.complete(ctx, "stage2-verify",
		[]map[string]any{filePart(filename, doc), textPart(promptStage2Verify + transcript)}); err != nil {
		e.logger.Warn("ai.direct.verify_failed", "path", path, "error", err)
	} else if corrected != "" {
		verified = corrected
	}
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	// Stage 3: structuring pass, text only.
	var records []record.Record
	structured, err := e.client.complete(ctx, "stage3-structure",
		[]map[string]any{textPart(buildStage3Prompt(verified))})
	if err != nil {
		e.logger.Warn("ai.direct.structure_failed", "path", path, "error", err)
	} else if recs, perr := ParseRecords(structured); perr != nil {
		e.logger.Warn("ai.direct.structure_not_json", "path", path, "error", perr)
	} else {
		records = recs
	}

	return Output{
		Text:    verified,
		Pages:   1,
		Records: records,
		Method:  constants.MethodAIDirect,
	}, nil
}
