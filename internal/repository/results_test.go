package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avollmer/invoice-extractor/internal/common"
	"github.com/avollmer/invoice-extractor/internal/fields"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, common.DatabaseConfig{
		DSN:         ":memory:",
		DialTimeout: 3 * time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLStore(db)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestSaveAndListRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	recs := []fields.Record{
		{"Rechnungsnummer": "RE-1", "Betrag (€)": "100.00"},
		{"Rechnungsnummer": "RE-2"},
	}
	for i, rec := range recs {
		if err := s.SaveRecord(ctx, sessionID, "doc", rec); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := s.ListRecords(ctx, sessionID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records = %d, want 2", len(got))
	}
	if got[0]["Rechnungsnummer"] != "RE-1" || got[1]["Rechnungsnummer"] != "RE-2" {
		t.Fatalf("unexpected records %v", got)
	}

	// Other sessions see nothing.
	other, err := s.ListRecords(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("foreign session records = %d, want 0", len(other))
	}
}

func TestQuotaRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sessionID := uuid.New()

	if err := s.SaveQuota(ctx, sessionID, "2025-10-25", 3); err != nil {
		t.Fatalf("save quota: %v", err)
	}
	// Upsert on the same session.
	if err := s.SaveQuota(ctx, sessionID, "2025-10-25", 4); err != nil {
		t.Fatalf("update quota: %v", err)
	}

	day, used, err := s.LoadQuota(ctx, sessionID)
	if err != nil {
		t.Fatalf("load quota: %v", err)
	}
	if day != "2025-10-25" || used != 4 {
		t.Fatalf("quota = (%q, %d)", day, used)
	}
}
