package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/common"
	"github.com/avollmer/invoice-extractor/internal/extract"
	"github.com/avollmer/invoice-extractor/internal/fields"
	"github.com/avollmer/invoice-extractor/internal/ner"
	"github.com/avollmer/invoice-extractor/internal/repository"
)

// Document is one batch candidate.
type Document struct {
	Name string
	Path string
	Size int64
}

// DocumentResult is the per-document outcome.
type DocumentResult struct {
	ID     uuid.UUID
	Name   string
	Status constants.DocStatus
	Method string            // acquisition method, when extraction ran
	Record fields.Record     // nil unless extraction ran
	Issues map[string]string // advisory validation diagnostics
}

// Summary reports one ProcessBatch run. Truncated counts the trailing
// documents that were not admitted; which ones they were follows from
// submission order (docs[Admitted:]).
type Summary struct {
	BatchID   uuid.UUID
	Admitted  int
	Truncated int
	Processed int
	Accepted  int
	Results   []DocumentResult
}

// ValidateFunc is the optional record validator. nil means no validation
// step runs.
type ValidateFunc func(fields.Record) map[string]string

// Processor runs documents through acquisition, recognition, merge and
// validation, accumulating accepted records on the session. Documents are
// processed strictly one after another; collaborator calls block.
type Processor struct {
	Logger     *slog.Logger
	Extractor  extract.TextExtractor
	Recognizer ner.Recognizer
	Mapper     *fields.Mapper
	Merger     *fields.Merger
	Validate   ValidateFunc
	Store      repository.ResultStore // optional
}

// NewProcessor wires the pipeline. A nil recognizer selects pattern-only
// mode, explicitly and observably: it is logged once here, not rediscovered
// per document.
func NewProcessor(
	logger *slog.Logger,
	extractor extract.TextExtractor,
	recognizer ner.Recognizer,
	mapper *fields.Mapper,
	merger *fields.Merger,
	validate ValidateFunc,
	store repository.ResultStore,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if recognizer == nil {
		logger.Warn("batch.pattern_only_mode", "reason", "no recognizer configured")
		recognizer = ner.Noop{}
	}
	return &Processor{
		Logger:     logger,
		Extractor:  extractor,
		Recognizer: recognizer,
		Mapper:     mapper,
		Merger:     merger,
		Validate:   validate,
		Store:      store,
	}
}

// ProcessBatch admits min(len(docs), remaining quota) documents in submission
// order and runs each through the pipeline. Oversized documents are skipped
// without consuming quota; documents whose every field resolved to a sentinel
// are reported but not accumulated.
func (p *Processor) ProcessBatch(ctx context.Context, sess *Session, selected []string, docs []Document) Summary {
	start := time.Now()
	if len(selected) == 0 {
		selected = constants.DefaultSelectedFields
	}

	sum := Summary{BatchID: uuid.New()}
	ctx = common.WithSessionID(ctx, sess.ID.String())
	ctx = common.WithBatchID(ctx, sum.BatchID.String())

	sum.Admitted = sess.Quota.Admit(len(docs))
	sum.Truncated = len(docs) - sum.Admitted

	p.Logger.Info("batch.start",
		"batch_id", sum.BatchID,
		"session_id", sess.ID,
		"submitted", len(docs),
		"admitted", sum.Admitted,
		"fields", len(selected),
	)

	for _, doc := range docs[:sum.Admitted] {
		res := p.processOne(ctx, sess, selected, doc)
		sum.Results = append(sum.Results, res)
		if res.Status != constants.DocStatusOversized {
			sum.Processed++
		}
		if res.Status == constants.DocStatusExtracted {
			sum.Accepted++
		}
	}

	// Excess documents are excluded from processing; listing them here makes
	// the truncation visible to the caller instead of only the count.
	for _, doc := range docs[sum.Admitted:] {
		sum.Results = append(sum.Results, DocumentResult{
			ID:     uuid.New(),
			Name:   doc.Name,
			Status: constants.DocStatusRejected,
		})
	}

	if p.Store != nil {
		day, used := sess.Quota.Snapshot()
		if err := p.Store.SaveQuota(ctx, sess.ID, day, used); err != nil {
			p.Logger.Error("batch.quota_persist_failed", "session_id", sess.ID, "error", err)
		}
	}

	p.Logger.Info("batch.done",
		"batch_id", sum.BatchID,
		"processed", sum.Processed,
		"accepted", sum.Accepted,
		"truncated", sum.Truncated,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sum
}

func (p *Processor) processOne(ctx context.Context, sess *Session, selected []string, doc Document) DocumentResult {
	res := DocumentResult{ID: uuid.New(), Name: doc.Name}

	if sess.Quota.Oversized(doc.Size) {
		p.Logger.Warn("batch.doc_oversized", "doc", doc.Name, "size_bytes", doc.Size)
		res.Status = constants.DocStatusOversized
		return res
	}

	// From here on the document counts against the quota, whatever the
	// extraction outcome.
	defer sess.Quota.Commit()

	text := ""
	acqFailed := false
	tr, err := p.Extractor.Extract(ctx, doc.Path)
	if err != nil {
		// Recoverable per document: continue with empty text, every field
		// resolves to "Nicht gefunden".
		p.Logger.Error("batch.acquisition_failed", "doc", doc.Name, "error", err)
		acqFailed = true
	} else {
		text = tr.Text
		res.Method = tr.Method
	}

	spans, err := p.Recognizer.Recognize(ctx, text)
	if err != nil {
		// Recognizer trouble degrades to pattern-only for this document.
		p.Logger.Warn("batch.recognizer_failed", "doc", doc.Name, "error", err)
		spans = nil
	}

	nerValues := p.Mapper.Map(spans)
	rec := p.Merger.BuildRecord(selected, nerValues, text)
	res.Record = rec

	if p.Validate != nil {
		res.Issues = p.Validate(rec)
		for field, msg := range res.Issues {
			p.Logger.Warn("batch.validation_issue", "doc", doc.Name, "field", field, "issue", msg)
		}
	}

	if !rec.HasData() {
		p.Logger.Warn("batch.doc_no_data", "doc", doc.Name)
		res.Status = constants.DocStatusNoData
		if acqFailed {
			res.Status = constants.DocStatusFailed
		}
		return res
	}

	sess.append(rec)
	if p.Store != nil {
		if err := p.Store.SaveRecord(ctx, sess.ID, doc.Name, rec); err != nil {
			p.Logger.Error("batch.record_persist_failed", "doc", doc.Name, "error", err)
		}
	}

	p.Logger.Info("batch.doc_extracted",
		"doc", doc.Name,
		"method", res.Method,
		"ner_fields", len(nerValues),
		"issues", len(res.Issues),
	)
	res.Status = constants.DocStatusExtracted
	return res
}
