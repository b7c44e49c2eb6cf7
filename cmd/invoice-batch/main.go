package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/batch"
	"github.com/avollmer/invoice-extractor/internal/common"
	"github.com/avollmer/invoice-extractor/internal/export"
	"github.com/avollmer/invoice-extractor/internal/fields"
	"github.com/avollmer/invoice-extractor/internal/ingest"
	"github.com/avollmer/invoice-extractor/internal/ner"
	"github.com/avollmer/invoice-extractor/internal/ocr"
	repo "github.com/avollmer/invoice-extractor/internal/repository"
	"github.com/avollmer/invoice-extractor/internal/validate"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory with PDF invoices to process (required)")
		out       = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		fieldList = flag.String("fields", "", "comma-separated canonical field names (optional)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "extraktion.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Field and label tables: built-in German defaults, optional JSON override.
	registry := fields.DefaultRegistry()
	labels := fields.DefaultLabelMapping()
	if cfg.Batch.TablePath != "" {
		var err error
		registry, labels, err = fields.LoadTables(cfg.Batch.TablePath)
		if err != nil {
			logger.Error("failed to load field tables", "path", cfg.Batch.TablePath, "error", err)
			os.Exit(1)
		}
		logger.Info("field tables loaded", "path", cfg.Batch.TablePath)
	}

	selected := constants.DefaultSelectedFields
	if *fieldList != "" {
		selected = nil
		for _, f := range strings.Split(*fieldList, ",") {
			if f = strings.TrimSpace(f); f != "" {
				selected = append(selected, f)
			}
		}
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Lang:      cfg.OCR.Lang,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	// Recognizer sidecar (graceful if missing: pattern-only mode)
	var recognizer ner.Recognizer
	if cfg.NER.Endpoint != "" {
		recognizer = ner.NewHTTPRecognizer(cfg.NER.Endpoint, cfg.NER.Timeout, logger)
		logger.Info("recognizer initialized", "endpoint", cfg.NER.Endpoint)
	} else {
		logger.Warn("NER_ENDPOINT not configured, running pattern-only")
	}

	// Optional persistence
	var store repo.ResultStore
	if cfg.Database.DSN != "" {
		db, err := repo.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("close database", "error", cerr)
			}
		}()
		sqlStore := repo.NewSQLStore(db)
		if err := sqlStore.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		store = sqlStore
	}

	processor := batch.NewProcessor(
		logger,
		extractor,
		recognizer,
		fields.NewMapper(labels, registry),
		fields.NewMerger(registry),
		validate.Validate,
		store,
	)

	docs, stats, err := ingest.ScanDirectory(*dir)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("directory scanned",
		"dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched,
		"skipped", stats.Skipped, "failed", stats.Failed)
	if len(docs) == 0 {
		logger.Warn("no PDF documents found", "dir", *dir)
		os.Exit(0)
	}

	sess := batch.NewSession(cfg.Batch.DailyQuota, cfg.Batch.MaxFileSizeMB)
	logger.Info("session created", "session_id", sess.ID, "quota_remaining", sess.Quota.Remaining())

	sum := processor.ProcessBatch(ctx, sess, selected, docs)
	if sum.Truncated > 0 {
		logger.Warn("batch truncated by quota",
			"submitted", len(docs), "admitted", sum.Admitted, "excluded", sum.Truncated)
	}

	results := sess.Results()
	if len(results) == 0 {
		logger.Warn("no records extracted, skipping export")
		os.Exit(0)
	}

	xlsxBytes, err := export.NewService(logger).RecordsXLSX(selected, results)
	if err != nil {
		logger.Error("failed to export records", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"submitted", len(docs),
		"processed", sum.Processed,
		"accepted", sum.Accepted,
		"quota_used", sess.Quota.Used(),
		"output", *out,
	)
}
