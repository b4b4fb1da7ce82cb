package ai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// ExtractPerPage renders every page to an image and recognizes them one at a
// time, strictly in page order: the AI service first, the local OCR engine
// as a per-page fallback. Structured table extraction runs only for pages
// the AI path transcribed; OCR-only pages contribute text but no records.
func (e *Extractor) ExtractPerPage(ctx context.Context, path string) (Output, error) {
	aiOK := e.aiAvailable()
	ocrOK := e.ocrAvailable()
	if !aiOK && !ocrOK {
		return Output{}, fmt.Errorf("no recognition backend available (configure the AI service or install tesseract)")
	}

	pages, cleanup, err := e.renderer.RenderPages(ctx, path)
	if err != nil {
		return Output{}, err
	}
	defer cleanup()

	var (
		text        strings.Builder
		records     []record.Record
		pageMethods = make([]string, 0, len(pages))
	)

	for i, pagePath := range pages {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}
		pageNo := i + 1

		if aiOK {
			pageText, records2, ok := e.recognizePageAI(ctx, pagePath, pageNo)
			if ok {
				writePage(&text, pageNo, pageText)
				records = append(records, records2...)
				pageMethods = append(pageMethods, "ai")
				continue
			}
		}

		if ocrOK {
			if ocrText := e.ocr.RecognizePage(ctx, pagePath); ocrText != "" {
				writePage(&text, pageNo, ocrText)
				pageMethods = append(pageMethods, "ocr")
				continue
			}
		}

		e.logger.Warn("ai.page.no_text", "path", path, "page", pageNo)
		pageMethods = append(pageMethods, "none")
	}

	return Output{
		Text:        strings.TrimSpace(text.String()),
		Pages:       len(pages),
		Records:     records,
		Method:      overallMethod(pageMethods),
		PageMethods: pageMethods,
	}, nil
}

// recognizePageAI transcribes one page via the AI service and, when that
// succeeds, issues the follow-up table round-trip for the same page.
func (e *Extractor) recognizePageAI(ctx context.Context, pagePath string, pageNo int) (string, []record.Record, bool) {
	img, err := os.ReadFile(pagePath)
	if err != nil {
		e.logger.Warn("ai.page.read_failed", "page", pageNo, "error", err)
		return "", nil, false
	}

	pageText, err := e.client.complete(ctx, "page-text",
		[]map[string]any{imagePart(img), textPart(promptPageText)})
	if err != nil || pageText == "" {
		if err != nil {
			e.logger.Warn("ai.page.text_failed", "page", pageNo, "error", err)
		}
		return "", nil, false
	}

	tablesRaw, err := e.client.complete(ctx, "page-tables",
		[]map[string]any{imagePart(img), textPart(promptPageTables)})
	if err != nil {
		e.logger.Warn("ai.page.tables_failed", "page", pageNo, "error", err)
		return pageText, nil, true
	}
	recs, err := ParseRecords(tablesRaw)
	if err != nil {
		// non-JSON-array table response is empty data, not an error
		e.logger.Warn("ai.page.tables_not_json", "page", pageNo, "error", err)
		return pageText, nil, true
	}
	return pageText, recs, true
}

func writePage(b *strings.Builder, pageNo int, text string) {
	b.WriteString(fmt.Sprintf(constants.PageMarker, pageNo))
	b.WriteString(text)
}

// overallMethod keeps a single legacy label next to the per-page breakdown:
// AI wins if it handled any page, then OCR, then none.
func overallMethod(pageMethods []string) string {
	method := constants.MethodNone
	for _, m := range pageMethods {
		if m == "ai" {
			return constants.MethodAIPerPage
		}
		if m == "ocr" {
			method = constants.MethodOCRFallback
		}
	}
	return method
}
