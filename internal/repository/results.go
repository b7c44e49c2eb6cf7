package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avollmer/invoice-extractor/internal/fields"
)

// ResultStore persists accepted records and the per-session quota counter.
type ResultStore interface {
	SaveRecord(ctx context.Context, sessionID uuid.UUID, docName string, rec fields.Record) error
	ListRecords(ctx context.Context, sessionID uuid.UUID) ([]fields.Record, error)
	SaveQuota(ctx context.Context, sessionID uuid.UUID, day string, used int) error
	LoadQuota(ctx context.Context, sessionID uuid.UUID) (day string, used int, err error)
}

// SQLStore is the sqlx-backed ResultStore. Field values are stored as a JSON
// document per record; the field set is caller-defined so a relational column
// per field would not fit.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS extraction_record (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	doc_name    TEXT NOT NULL,
	field_json  TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extraction_record_session ON extraction_record (session_id);

CREATE TABLE IF NOT EXISTS quota_state (
	session_id  TEXT PRIMARY KEY,
	day         TEXT NOT NULL,
	used        INTEGER NOT NULL
);
`

// Migrate creates the tables when missing. Idempotent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLStore) SaveRecord(ctx context.Context, sessionID uuid.UUID, docName string, rec fields.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO extraction_record (id, session_id, doc_name, field_json, created_at) VALUES (?, ?, ?, ?, ?)`),
		uuid.New().String(), sessionID.String(), docName, string(payload), time.Now().UTC())
	return err
}

func (s *SQLStore) ListRecords(ctx context.Context, sessionID uuid.UUID) ([]fields.Record, error) {
	var rows []struct {
		FieldJSON string `db:"field_json"`
	}
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT field_json FROM extraction_record WHERE session_id = ? ORDER BY created_at`),
		sessionID.String())
	if err != nil {
		return nil, err
	}
	out := make([]fields.Record, 0, len(rows))
	for _, r := range rows {
		var rec fields.Record
		if err := json.Unmarshal([]byte(r.FieldJSON), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLStore) SaveQuota(ctx context.Context, sessionID uuid.UUID, day string, used int) error {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO quota_state (session_id, day, used) VALUES (?, ?, ?)
			ON CONFLICT (session_id) DO UPDATE SET day = excluded.day, used = excluded.used`),
		sessionID.String(), day, used)
	return err
}

func (s *SQLStore) LoadQuota(ctx context.Context, sessionID uuid.UUID) (string, int, error) {
	var row struct {
		Day  string `db:"day"`
		Used int    `db:"used"`
	}
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind(`SELECT day, used FROM quota_state WHERE session_id = ?`),
		sessionID.String())
	if err != nil {
		return "", 0, err
	}
	return row.Day, row.Used, nil
}
