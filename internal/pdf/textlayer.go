package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-extractor/internal/runner"
)

// TextResult is the outcome of text-layer extraction. Empty text is NOT an
// error here; the orchestrator applies the minimum-length policy.
type TextResult struct {
	Text   string
	Pages  int
	Reader string // "pdftotext" | "pdf-go"
}

// TextLayer extracts the embedded text layer of a PDF without any network
// calls. The primary reader is poppler's pdftotext in layout mode (better
// column/table fidelity); if it yields only whitespace the pure-Go reader is
// tried, which handles some encodings poppler trips on.
type TextLayer struct {
	cfg    common.ExtractConfig
	runner runner.Runner
	logger *slog.Logger
}

func NewTextLayer(cfg common.ExtractConfig, r runner.Runner, logger *slog.Logger) *TextLayer {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = runner.Exec{}
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &TextLayer{cfg: cfg, runner: r, logger: logger}
}

// Extract returns the best-effort text layer. It fails only when the file
// itself is unreadable or both readers error out.
func (t *TextLayer) Extract(ctx context.Context, path string) (TextResult, error) {
	if _, err := os.Stat(path); err != nil {
		return TextResult{}, fmt.Errorf("stat %s: %w", path, err)
	}

	res, primaryErr := t.pdftotext(ctx, path)
	if primaryErr == nil && strings.TrimSpace(res.Text) != "" {
		return res, nil
	}
	if primaryErr != nil {
		t.logger.Warn("textlayer.primary_failed", "path", path, "error", primaryErr)
	} else {
		t.logger.Info("textlayer.primary_empty", "path", path, "pages", res.Pages)
	}

	sec, secondaryErr := t.pdfGo(path)
	if secondaryErr != nil {
		if primaryErr != nil {
			return TextResult{}, common.WrapError(secondaryErr, "both text-layer readers failed")
		}
		// primary ran fine, it just found no text; keep its page count
		t.logger.Warn("textlayer.secondary_failed", "path", path, "error", secondaryErr)
		return res, nil
	}
	if strings.TrimSpace(sec.Text) != "" {
		return sec, nil
	}
	if primaryErr == nil {
		return res, nil
	}
	return sec, nil
}

func (t *TextLayer) pdftotext(ctx context.Context, path string) (TextResult, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := t.runner.Run(ctx, t.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return TextResult{}, fmt.Errorf("pdftotext: %w (%s)", err, strings.TrimSpace(string(errb)))
	}
	// A form-feed \f is used as page separator by default.
	pages := strings.Split(string(out), "\f")
	return TextResult{
		Text:   joinPages(pages),
		Pages:  len(pages),
		Reader: "pdftotext",
	}, nil
}

func (t *TextLayer) pdfGo(path string) (TextResult, error) {
	f, r, err := ledongthuc.Open(path)
	if err != nil {
		return TextResult{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			txt = ""
		}
		pages = append(pages, txt)
	}
	return TextResult{
		Text:   joinPages(pages),
		Pages:  numPages,
		Reader: "pdf-go",
	}, nil
}

// joinPages concatenates non-empty page texts with the page-boundary marker.
func joinPages(pages []string) string {
	var b strings.Builder
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(fmt.Sprintf(constants.PageMarker, i+1))
		b.WriteString(strings.TrimRight(p, "\n"))
	}
	return strings.TrimSpace(b.String())
}
