package constants

import "strings"

// Method labels reported in ExtractionResult.Method. Human-readable, stable:
// the delivery layer matches on them when wording user-facing messages.
const (
	MethodStandard    = "standard-extraction"
	MethodAIPerPage   = "ai-per-page"
	MethodAIDirect    = "ai-direct-document-3-stage"
	MethodOCRFallback = "ocr-fallback"
	MethodNone        = "none"
)

// PageMarker formats the boundary inserted between pages when per-page text
// is concatenated. %d is the 1-based page number.
const PageMarker = "\n\n--- Страница %d ---\n"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDF reports whether the (possibly dotted, mixed-case) extension is PDF.
func IsPDF(ext string) bool {
	return NormalizeExt(ext) == "pdf"
}
