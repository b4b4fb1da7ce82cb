package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/ai"
	"github.com/joseph-ayodele/pdf-extractor/internal/pdf"
)

type stubText struct {
	res   pdf.TextResult
	err   error
	panic bool
}

func (s stubText) Extract(context.Context, string) (pdf.TextResult, error) {
	if s.panic {
		panic("text layer blew up")
	}
	return s.res, s.err
}

type stubAI struct {
	direct     ai.Output
	directErr  error
	perPage    ai.Output
	perPageErr error

	directCalls  int
	perPageCalls int
}

func (s *stubAI) ExtractDirect(context.Context, string) (ai.Output, error) {
	s.directCalls++
	return s.direct, s.directErr
}

func (s *stubAI) ExtractPerPage(context.Context, string) (ai.Output, error) {
	s.perPageCalls++
	return s.perPage, s.perPageErr
}

type stubClassifier struct{ scanned bool }

func (s stubClassifier) IsScanned(context.Context, string) bool { return s.scanned }

func checkInvariant(t *testing.T, res Result) {
	t.Helper()
	if res.Success && res.Error != "" {
		t.Errorf("successful result carries error %q", res.Error)
	}
	if !res.Success {
		if res.Error == "" {
			t.Error("failed result has no error message")
		}
		if res.Text != "" {
			t.Errorf("failed result carries text %q", res.Text)
		}
		if len(res.Records) != 0 {
			t.Errorf("failed result carries %d records", len(res.Records))
		}
	}
}

func TestProcess_NoBackendsShortText(t *testing.T) {
	o := NewOrchestrator(
		Capabilities{},
		10,
		nil,
		stubText{res: pdf.TextResult{Text: "abc", Pages: 1}},
		&stubAI{},
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if res.Success {
		t.Fatal("expected failure for 3 characters of text with no fallback")
	}
	if !strings.Contains(res.Error, "no usable text extracted (3 characters)") {
		t.Errorf("error = %q", res.Error)
	}
	if res.Method != constants.MethodStandard {
		t.Errorf("method = %q", res.Method)
	}
}

func TestProcess_StandardSuccess(t *testing.T) {
	text := "ФИО                    Должность\nИванов Иван Иванович   Инженер"
	o := NewOrchestrator(
		Capabilities{},
		10,
		stubClassifier{scanned: false},
		stubText{res: pdf.TextResult{Text: text, Pages: 1}},
		&stubAI{},
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if !res.Success {
		t.Fatalf("Process failed: %s", res.Error)
	}
	if res.Method != constants.MethodStandard {
		t.Errorf("method = %q", res.Method)
	}
	if res.Text != text {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Records) != 1 || res.Records[0].Get("fio") != "Иванов Иван Иванович" {
		t.Errorf("records = %+v, want the table row parsed", res.Records)
	}
}

func TestProcess_AIDirectPreferred(t *testing.T) {
	aix := &stubAI{direct: ai.Output{
		Text:   "извлеченный текст документа",
		Pages:  1,
		Method: constants.MethodAIDirect,
	}}
	o := NewOrchestrator(Capabilities{AIAvailable: true}, 10, nil, stubText{}, aix, nil)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if !res.Success || res.Method != constants.MethodAIDirect {
		t.Fatalf("success = %v, method = %q, error = %q", res.Success, res.Method, res.Error)
	}
	if aix.directCalls != 1 || aix.perPageCalls != 0 {
		t.Errorf("calls: direct %d, perPage %d", aix.directCalls, aix.perPageCalls)
	}
}

func TestProcess_AIDirectFallsBackToPerPage(t *testing.T) {
	aix := &stubAI{
		directErr: fmt.Errorf("stage 1 (raw extraction): ai status 500"),
		perPage: ai.Output{
			Text:        "текст со страниц",
			Pages:       2,
			Method:      constants.MethodAIPerPage,
			PageMethods: []string{"ai", "ai"},
		},
	}
	o := NewOrchestrator(Capabilities{AIAvailable: true}, 10, nil, stubText{}, aix, nil)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if !res.Success || res.Method != constants.MethodAIPerPage {
		t.Fatalf("success = %v, method = %q, error = %q", res.Success, res.Method, res.Error)
	}
	if res.PageCount != 2 || len(res.PageMethods) != 2 {
		t.Errorf("pages = %d, pageMethods = %v", res.PageCount, res.PageMethods)
	}
	if aix.directCalls != 1 || aix.perPageCalls != 1 {
		t.Errorf("calls: direct %d, perPage %d", aix.directCalls, aix.perPageCalls)
	}
}

func TestProcess_AIBothModesFailFallsToStandard(t *testing.T) {
	aix := &stubAI{
		directErr:  fmt.Errorf("direct failed"),
		perPageErr: fmt.Errorf("per-page failed"),
	}
	o := NewOrchestrator(
		Capabilities{AIAvailable: true},
		10,
		nil,
		stubText{res: pdf.TextResult{Text: "достаточно длинный текст документа", Pages: 1}},
		aix,
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if !res.Success || res.Method != constants.MethodStandard {
		t.Fatalf("success = %v, method = %q, error = %q", res.Success, res.Method, res.Error)
	}
}

func TestProcess_OCRFallbackOnShortText(t *testing.T) {
	aix := &stubAI{perPage: ai.Output{
		Text:        "распознанный текст страницы",
		Pages:       1,
		Method:      constants.MethodOCRFallback,
		PageMethods: []string{"ocr"},
	}}
	o := NewOrchestrator(
		Capabilities{OCRAvailable: true},
		10,
		nil,
		stubText{res: pdf.TextResult{Text: "", Pages: 1}},
		aix,
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if !res.Success || res.Method != constants.MethodOCRFallback {
		t.Fatalf("success = %v, method = %q, error = %q", res.Success, res.Method, res.Error)
	}
	if aix.directCalls != 0 {
		t.Errorf("direct mode must not run without AI capability, calls = %d", aix.directCalls)
	}
}

func TestProcess_OCRFallbackEmptyStillFails(t *testing.T) {
	aix := &stubAI{perPage: ai.Output{Text: "   ", Pages: 1, Method: constants.MethodNone}}
	o := NewOrchestrator(
		Capabilities{OCRAvailable: true},
		10,
		nil,
		stubText{res: pdf.TextResult{Text: "", Pages: 1}},
		aix,
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if res.Success {
		t.Fatal("whitespace-only OCR output must not count as usable text")
	}
}

func TestProcess_TextLayerError(t *testing.T) {
	o := NewOrchestrator(
		Capabilities{},
		10,
		nil,
		stubText{err: fmt.Errorf("open doc.pdf: no such file")},
		&stubAI{},
		nil,
	)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if res.Success {
		t.Fatal("expected failure when the text layer errors")
	}
	if !strings.Contains(res.Error, "standard extraction failed") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestProcess_PanicRecovered(t *testing.T) {
	o := NewOrchestrator(Capabilities{}, 10, nil, stubText{panic: true}, &stubAI{}, nil)

	res := o.Process(context.Background(), "doc.pdf")
	checkInvariant(t, res)
	if res.Success {
		t.Fatal("expected panic to surface as a failed result")
	}
	if !strings.Contains(res.Error, "unexpected failure") {
		t.Errorf("error = %q", res.Error)
	}
}
