package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/extract"
	"github.com/avollmer/invoice-extractor/internal/fields"
	"github.com/avollmer/invoice-extractor/internal/ner"
)

type fakeExtractor struct {
	texts map[string]string // path -> text
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (extract.TextExtractionResult, error) {
	if f.err != nil {
		return extract.TextExtractionResult{}, f.err
	}
	return extract.TextExtractionResult{Text: f.texts[path], Method: "pdf-text", Pages: 1}, nil
}

type fakeRecognizer struct {
	spans []ner.Span
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ string) ([]ner.Span, error) {
	f.calls++
	return f.spans, f.err
}

type memStore struct {
	records  []fields.Record
	quotaDay string
	quota    int
}

func (m *memStore) SaveRecord(_ context.Context, _ uuid.UUID, _ string, rec fields.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) ListRecords(_ context.Context, _ uuid.UUID) ([]fields.Record, error) {
	return m.records, nil
}

func (m *memStore) SaveQuota(_ context.Context, _ uuid.UUID, day string, used int) error {
	m.quotaDay, m.quota = day, used
	return nil
}

func (m *memStore) LoadQuota(_ context.Context, _ uuid.UUID) (string, int, error) {
	return m.quotaDay, m.quota, nil
}

func newTestProcessor(ex extract.TextExtractor, rec ner.Recognizer, store *memStore) *Processor {
	registry := fields.DefaultRegistry()
	p := NewProcessor(nil, ex, rec,
		fields.NewMapper(fields.DefaultLabelMapping(), registry),
		fields.NewMerger(registry),
		nil, nil)
	if store != nil {
		p.Store = store
	}
	return p
}

func TestProcessBatchAcceptsRecordsWithData(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{
		"a.pdf": "Rechnungsnummer: RE-1\nDatum: 25.10.2025\nGesamtbetrag: EUR 100,00",
	}}
	p := newTestProcessor(ex, nil, nil)
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, nil, []Document{{Name: "a.pdf", Path: "a.pdf", Size: 100}})
	if sum.Accepted != 1 || sum.Processed != 1 {
		t.Fatalf("accepted=%d processed=%d", sum.Accepted, sum.Processed)
	}
	results := sess.Results()
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0]["Rechnungsnummer"] != "RE-1" {
		t.Errorf("Rechnungsnummer = %q", results[0]["Rechnungsnummer"])
	}
	if results[0]["Betrag (€)"] != "100.00" {
		t.Errorf("Betrag (€) = %q", results[0]["Betrag (€)"])
	}
	if sess.Quota.Used() != 1 {
		t.Errorf("quota used = %d, want 1", sess.Quota.Used())
	}
}

func TestProcessBatchAllSentinelExcluded(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"leer.pdf": "nichts brauchbares"}}
	p := newTestProcessor(ex, nil, nil)
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, nil, []Document{{Name: "leer.pdf", Path: "leer.pdf", Size: 10}})
	if sum.Accepted != 0 {
		t.Fatalf("accepted = %d, want 0", sum.Accepted)
	}
	if got := sum.Results[0].Status; got != constants.DocStatusNoData {
		t.Fatalf("status = %q, want NO_DATA", got)
	}
	if len(sess.Results()) != 0 {
		t.Fatal("all-sentinel record must not be accumulated")
	}
	if sess.Quota.Used() != 1 {
		t.Fatalf("quota used = %d; failed extraction still consumes quota", sess.Quota.Used())
	}
}

func TestProcessBatchQuotaTruncation(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{}}
	p := newTestProcessor(ex, nil, nil)
	sess := NewSession(5, 5)
	for i := 0; i < 3; i++ {
		sess.Quota.Commit()
	}

	docs := []Document{
		{Name: "1.pdf", Path: "1.pdf"}, {Name: "2.pdf", Path: "2.pdf"},
		{Name: "3.pdf", Path: "3.pdf"}, {Name: "4.pdf", Path: "4.pdf"},
	}
	sum := p.ProcessBatch(context.Background(), sess, nil, docs)
	if sum.Admitted != 2 || sum.Truncated != 2 {
		t.Fatalf("admitted=%d truncated=%d, want 2/2", sum.Admitted, sum.Truncated)
	}
	if sess.Quota.Used() != 5 {
		t.Fatalf("quota used = %d, want 5", sess.Quota.Used())
	}
	// The dropped documents are the trailing ones in submission order.
	var rejected []string
	for _, r := range sum.Results {
		if r.Status == constants.DocStatusRejected {
			rejected = append(rejected, r.Name)
		}
	}
	if len(rejected) != 2 || rejected[0] != "3.pdf" || rejected[1] != "4.pdf" {
		t.Fatalf("rejected = %v, want [3.pdf 4.pdf]", rejected)
	}
}

func TestProcessBatchOversizedSkipped(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"big.pdf": "Rechnungsnummer: RE-9"}}
	p := newTestProcessor(ex, nil, nil)
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, nil,
		[]Document{{Name: "big.pdf", Path: "big.pdf", Size: 6 << 20}})
	if got := sum.Results[0].Status; got != constants.DocStatusOversized {
		t.Fatalf("status = %q, want OVERSIZED", got)
	}
	if sum.Processed != 0 {
		t.Fatalf("processed = %d, want 0", sum.Processed)
	}
	if sess.Quota.Used() != 0 {
		t.Fatal("oversized document must not consume quota")
	}
	if len(sess.Results()) != 0 {
		t.Fatal("oversized document must produce no record")
	}
}

func TestProcessBatchRecognizerPrecedence(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "Rechnungsnummer: B"}}
	rec := &fakeRecognizer{spans: []ner.Span{{Label: "RECHNUNGSNUMMER", Text: "A"}}}
	p := newTestProcessor(ex, rec, nil)
	sess := NewSession(5, 5)

	p.ProcessBatch(context.Background(), sess, []string{"Rechnungsnummer"},
		[]Document{{Name: "a.pdf", Path: "a.pdf", Size: 10}})
	results := sess.Results()
	if len(results) != 1 || results[0]["Rechnungsnummer"] != "A" {
		t.Fatalf("results = %v, want recognizer value A", results)
	}
}

func TestProcessBatchRecognizerFailureDegrades(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "Rechnungsnummer: RE-7"}}
	rec := &fakeRecognizer{err: errors.New("sidecar down")}
	p := newTestProcessor(ex, rec, nil)
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, []string{"Rechnungsnummer"},
		[]Document{{Name: "a.pdf", Path: "a.pdf", Size: 10}})
	if sum.Accepted != 1 {
		t.Fatalf("accepted = %d; recognizer failure must degrade to pattern-only", sum.Accepted)
	}
	if sess.Results()[0]["Rechnungsnummer"] != "RE-7" {
		t.Fatalf("pattern fallback value missing: %v", sess.Results()[0])
	}
}

func TestProcessBatchAcquisitionFailure(t *testing.T) {
	ex := &fakeExtractor{err: errors.New("pdftotext missing")}
	p := newTestProcessor(ex, nil, nil)
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, nil,
		[]Document{{Name: "kaputt.pdf", Path: "kaputt.pdf", Size: 10}})
	if got := sum.Results[0].Status; got != constants.DocStatusFailed {
		t.Fatalf("status = %q, want FAILED", got)
	}
	if len(sess.Results()) != 0 {
		t.Fatal("failed acquisition must not accumulate a record")
	}
	if sess.Quota.Used() != 1 {
		t.Fatal("attempted extraction consumes quota")
	}
}

func TestProcessBatchPersistsRecordsAndQuota(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "Rechnungsnummer: RE-1"}}
	store := &memStore{}
	p := newTestProcessor(ex, nil, store)
	sess := NewSession(5, 5)

	p.ProcessBatch(context.Background(), sess, []string{"Rechnungsnummer"},
		[]Document{{Name: "a.pdf", Path: "a.pdf", Size: 10}})
	if len(store.records) != 1 {
		t.Fatalf("store records = %d, want 1", len(store.records))
	}
	if store.quota != 1 {
		t.Fatalf("persisted quota = %d, want 1", store.quota)
	}
}

func TestProcessBatchValidationIsAdvisory(t *testing.T) {
	ex := &fakeExtractor{texts: map[string]string{"a.pdf": "Rechnungsnummer: RE-1"}}
	p := newTestProcessor(ex, nil, nil)
	p.Validate = func(fields.Record) map[string]string {
		return map[string]string{"Rechnungsnummer": "verdächtig"}
	}
	sess := NewSession(5, 5)

	sum := p.ProcessBatch(context.Background(), sess, []string{"Rechnungsnummer"},
		[]Document{{Name: "a.pdf", Path: "a.pdf", Size: 10}})
	if sum.Accepted != 1 {
		t.Fatal("validation issues must not block record retention")
	}
	if sum.Results[0].Issues["Rechnungsnummer"] != "verdächtig" {
		t.Fatalf("issues = %v", sum.Results[0].Issues)
	}
}
