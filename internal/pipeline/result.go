package pipeline

import "github.com/joseph-ayodele/pdf-extractor/internal/record"

// Result is the outcome of one document's processing cycle. Invariant:
// Success is false exactly when Error is non-empty, and a failed result
// carries no text and no records.
type Result struct {
	Success     bool
	Text        string
	PageCount   int
	Records     []record.Record
	Method      string // label of the path actually taken
	PageMethods []string
	Error       string
}

func failure(method, msg string) Result {
	return Result{
		Success: false,
		Method:  method,
		Error:   msg,
	}
}
