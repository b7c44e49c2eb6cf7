package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avollmer/invoice-extractor/internal/fields"
	"github.com/avollmer/invoice-extractor/internal/quota"
)

// Session carries the state that outlives a single batch: the daily quota
// counter and the accumulated results. One Session per user/session; two
// sessions never share counters.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Quota     *quota.Controller

	mu      sync.Mutex
	results []fields.Record
}

func NewSession(dailyLimit, maxFileSizeMB int) *Session {
	return &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Quota:     quota.NewController(dailyLimit, maxFileSizeMB),
	}
}

func (s *Session) append(rec fields.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, rec)
}

// Results returns a copy of the accumulated records in acceptance order.
func (s *Session) Results() []fields.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fields.Record, len(s.results))
	copy(out, s.results)
	return out
}
