package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/ai"
	"github.com/joseph-ayodele/pdf-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-extractor/internal/export"
	"github.com/joseph-ayodele/pdf-extractor/internal/ocr"
	"github.com/joseph-ayodele/pdf-extractor/internal/pdf"
	"github.com/joseph-ayodele/pdf-extractor/internal/pipeline"
	"github.com/joseph-ayodele/pdf-extractor/internal/runner"
)

func main() {
	// .env is optional; real env always wins
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	xlsxPath := flag.String("xlsx", "", "export extracted records to this .xlsx file (single input only)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall processing timeout per document")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		logger.Error("usage", "cmd", "pdf-extractor [-xlsx out.xlsx] <document.pdf> [more.pdf ...]")
		os.Exit(2)
	}
	if *xlsxPath != "" && len(paths) != 1 {
		logger.Error("-xlsx requires exactly one input document")
		os.Exit(2)
	}
	for _, p := range paths {
		if !constants.IsPDF(filepath.Ext(p)) {
			logger.Error("only PDF inputs are supported", "path", p)
			os.Exit(2)
		}
	}

	cfg := common.LoadConfig()
	orch, caps := buildOrchestrator(cfg, logger)
	logger.Info("capabilities",
		"ai_available", caps.AIAvailable,
		"ocr_available", caps.OCRAvailable,
	)

	// Each document is an independent unit of work: its own goroutine, its
	// own context, no state shared with the others.
	results := make([]pipeline.Result, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			defer cancel()
			results[i] = orch.Process(ctx, path)
		}(i, path)
	}
	wg.Wait()

	failed := false
	for i, res := range results {
		if !res.Success {
			failed = true
			logger.Error("document failed",
				"path", paths[i], "method", res.Method, "error", res.Error)
			continue
		}
		logger.Info("document processed",
			"path", paths[i],
			"method", res.Method,
			"pages", res.PageCount,
			"chars", len(res.Text),
			"records", len(res.Records),
		)
	}

	if *xlsxPath != "" && results[0].Success {
		svc := export.NewService(logger)
		if err := svc.ExportRecords(results[0].Records, *xlsxPath); err != nil {
			logger.Error("export failed", "path", *xlsxPath, "error", err)
			failed = true
		} else {
			fmt.Println("exported:", *xlsxPath)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func buildOrchestrator(cfg *common.Config, logger *slog.Logger) (*pipeline.Orchestrator, pipeline.Capabilities) {
	run := runner.Exec{}

	renderer := pdf.NewRenderer(cfg.Extract, run, logger)
	classifier := pdf.NewClassifier(cfg.Classify, renderer, logger)
	textLayer := pdf.NewTextLayer(cfg.Extract, run, logger)
	engine := ocr.NewEngine(cfg.OCR, run, logger)
	client := ai.NewClient(cfg.AI, logger)
	extractor := ai.NewExtractor(client, renderer, engine, logger)

	caps := pipeline.Capabilities{
		AIAvailable:  client.Available(),
		OCRAvailable: engine.Available(),
	}
	orch := pipeline.NewOrchestrator(caps, cfg.Extract.MinTextLen, classifier, textLayer, extractor, logger)
	return orch, caps
}
