package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/extract"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language, default "deu"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit
}

// Extractor implements extract.TextExtractor for PDF documents: direct text
// layer first via pdftotext, OCR via pdftoppm+tesseract when the text layer
// is empty.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "deu"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract runs the layered acquisition. An empty result after both passes is
// returned without error; the caller decides how an all-empty document is
// reported.
func (e *Extractor) Extract(ctx context.Context, path string) (extract.TextExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		return extract.TextExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	res := extract.TextExtractionResult{Language: e.cfg.Lang}

	text, pages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		e.logger.Warn("ocr.pdftotext_failed", "path", path, "error", err)
	}
	if strings.TrimSpace(text) != "" {
		res.Text = Cleanup(text)
		res.Pages = pages
		res.Method = "pdf-text"
		res.Duration = time.Since(start)
		return res, nil
	}

	e.logger.Info("ocr.fallback", "path", path, "reason", "empty text layer")
	text, pages, warns, err = e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("ocr fallback: %w", err)
	}
	res.Text = Cleanup(text)
	res.Pages = pages
	res.Method = "pdf-ocr"
	res.Duration = time.Since(start)
	return res, nil
}
