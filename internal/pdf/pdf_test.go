package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdf-extractor/internal/common"
)

// fakeRunner scripts the external poppler binaries for tests.
type fakeRunner struct {
	run   func(name string, args []string) (stdout, stderr []byte, err error)
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.run(name, args)
}

func writeGarbageFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("definitely not a pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// ========== TextLayer ==========

func TestTextLayer_PdftotextPages(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return []byte("содержимое первой страницы\fсодержимое второй страницы"), nil, nil
	}}
	tl := NewTextLayer(common.ExtractConfig{}, r, nil)

	res, err := tl.Extract(context.Background(), writeGarbageFile(t, "doc.pdf"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Reader != "pdftotext" {
		t.Errorf("reader = %q", res.Reader)
	}
	if res.Pages != 2 {
		t.Errorf("pages = %d, want 2", res.Pages)
	}
	if !strings.Contains(res.Text, "--- Страница 1 ---") || !strings.Contains(res.Text, "--- Страница 2 ---") {
		t.Errorf("text %q lacks page markers", res.Text)
	}
	if len(r.calls) != 1 || r.calls[0][0] != "pdftotext" {
		t.Fatalf("calls = %v", r.calls)
	}
	args := strings.Join(r.calls[0], " ")
	if !strings.Contains(args, "-layout") || !strings.Contains(args, "UTF-8") {
		t.Errorf("pdftotext args = %q", args)
	}
}

func TestTextLayer_MissingFile(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		t.Error("runner must not be called for a missing file")
		return nil, nil, nil
	}}
	tl := NewTextLayer(common.ExtractConfig{}, r, nil)

	if _, err := tl.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestTextLayer_BothReadersFail(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't read xref table"), fmt.Errorf("exit status 1")
	}}
	tl := NewTextLayer(common.ExtractConfig{}, r, nil)

	// the file exists but is not a valid PDF, so the pure-Go reader fails too
	_, err := tl.Extract(context.Background(), writeGarbageFile(t, "broken.pdf"))
	if err == nil {
		t.Fatal("expected error when both readers fail")
	}
}

func TestTextLayer_EmptyPrimaryIsNotAnError(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return []byte("   \f  "), nil, nil
	}}
	tl := NewTextLayer(common.ExtractConfig{}, r, nil)

	res, err := tl.Extract(context.Background(), writeGarbageFile(t, "empty.pdf"))
	if err != nil {
		t.Fatalf("empty text layer must not be an error: %v", err)
	}
	if strings.TrimSpace(res.Text) != "" {
		t.Errorf("text = %q, want empty", res.Text)
	}
}

func TestJoinPages_SkipsEmptyPages(t *testing.T) {
	got := joinPages([]string{"первая", "   ", "третья"})
	if strings.Contains(got, "--- Страница 2 ---") {
		t.Errorf("blank page got a marker: %q", got)
	}
	if !strings.Contains(got, "--- Страница 3 ---") {
		t.Errorf("page numbering must be preserved across blanks: %q", got)
	}
}

// ========== Renderer ==========

// renderingRunner emulates pdftoppm: it writes n PNGs at the output prefix,
// which is always the final argument.
func renderingRunner(t *testing.T, n int, img image.Image) *fakeRunner {
	t.Helper()
	return &fakeRunner{run: func(_ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, nil, err
		}
		for i := 1; i <= n; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), buf.Bytes(), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}}
}

func flatImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func noisyImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x * y), 255})
		}
	}
	return img
}

func TestRenderPages_Order(t *testing.T) {
	r := renderingRunner(t, 3, flatImage(4, 4))
	ren := NewRenderer(common.ExtractConfig{}, r, nil)

	pages, cleanup, err := ren.RenderPages(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("RenderPages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	for i, p := range pages {
		want := fmt.Sprintf("page-%d.png", i+1)
		if filepath.Base(p) != want {
			t.Errorf("pages[%d] = %q, want suffix %q", i, p, want)
		}
	}

	dir := filepath.Dir(pages[0])
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("cleanup left temp dir %s behind", dir)
	}
}

func TestRenderPages_MaxPagesCap(t *testing.T) {
	r := renderingRunner(t, 5, flatImage(4, 4))
	ren := NewRenderer(common.ExtractConfig{MaxPages: 2}, r, nil)

	pages, cleanup, err := ren.RenderPages(context.Background(), "doc.pdf")
	if err != nil {
		t.Fatalf("RenderPages: %v", err)
	}
	defer cleanup()
	if len(pages) != 2 {
		t.Errorf("pages = %d, want cap at 2", len(pages))
	}
}

func TestRenderPages_FallbackDPIRetry(t *testing.T) {
	r := &fakeRunner{run: func(_ string, args []string) ([]byte, []byte, error) {
		return nil, []byte("Error: out of memory"), fmt.Errorf("exit status 1")
	}}
	ren := NewRenderer(common.ExtractConfig{RenderDPI: 300, FallbackDPI: 150}, r, nil)

	_, _, err := ren.RenderPages(context.Background(), "doc.pdf")
	if err == nil {
		t.Fatal("expected error after both attempts failed")
	}
	if !errors.Is(err, common.ErrConversion) {
		t.Errorf("error = %v, want ErrConversion", err)
	}
	if len(r.calls) != 2 {
		t.Fatalf("calls = %d, want render + fallback retry", len(r.calls))
	}
	first := strings.Join(r.calls[0], " ")
	second := strings.Join(r.calls[1], " ")
	if !strings.Contains(first, "-r 300") {
		t.Errorf("first attempt args = %q", first)
	}
	if !strings.Contains(second, "-r 150") {
		t.Errorf("retry args = %q", second)
	}
}

// ========== Classifier ==========

func TestIsScanned_NoisyPage(t *testing.T) {
	r := renderingRunner(t, 1, noisyImage(200, 200))
	ren := NewRenderer(common.ExtractConfig{}, r, nil)
	c := NewClassifier(common.ClassifyConfig{}, ren, nil)

	if !c.IsScanned(context.Background(), "scan.pdf") {
		t.Error("photographic page with thousands of colors must classify as scanned")
	}
}

func TestIsScanned_FlatPage(t *testing.T) {
	r := renderingRunner(t, 1, flatImage(200, 200))
	ren := NewRenderer(common.ExtractConfig{}, r, nil)
	c := NewClassifier(common.ClassifyConfig{}, ren, nil)

	if c.IsScanned(context.Background(), "digital.pdf") {
		t.Error("flat white page must classify as text-native")
	}
}

func TestIsScanned_RenderFailureDefaultsFalse(t *testing.T) {
	r := &fakeRunner{run: func(string, []string) ([]byte, []byte, error) {
		return nil, nil, fmt.Errorf("pdftoppm not found")
	}}
	ren := NewRenderer(common.ExtractConfig{}, r, nil)
	c := NewClassifier(common.ClassifyConfig{}, ren, nil)

	if c.IsScanned(context.Background(), "doc.pdf") {
		t.Error("render failure must yield the conservative default")
	}
}

func TestIsScanned_Deterministic(t *testing.T) {
	img := noisyImage(300, 300)
	first := false
	for i := 0; i < 5; i++ {
		r := renderingRunner(t, 1, img)
		c := NewClassifier(common.ClassifyConfig{}, NewRenderer(common.ExtractConfig{}, r, nil), nil)
		got := c.IsScanned(context.Background(), "scan.pdf")
		if i == 0 {
			first = got
			continue
		}
		if got != first {
			t.Fatalf("iteration %d: verdict flipped from %v to %v", i, first, got)
		}
	}
}
