package ner

import "context"

// Span is one recognized entity: a label from the recognizer vocabulary
// (not a canonical field name) plus the surface text and its offsets in the
// source document.
type Span struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Recognizer is the entity-recognition collaborator. Implementations may be
// heavy and blocking; callers treat a call as synchronous with no timeout of
// its own. An unavailable recognizer is represented by Noop, never by nil
// checks scattered through the pipeline.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Span, error)
}

// Noop is the pattern-only mode recognizer: it returns no spans and never
// fails. Used when no model endpoint is configured or the model failed to
// load at startup.
type Noop struct{}

func (Noop) Recognize(_ context.Context, _ string) ([]Span, error) {
	return nil, nil
}
