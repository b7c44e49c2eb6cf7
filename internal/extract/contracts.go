package extract

import (
	"context"
	"time"
)

// TextExtractor is the acquisition stage: document file -> raw text.
// Implementations try direct extraction first and fall back to OCR when the
// direct pass yields nothing; an all-empty result is not an error (the
// document then fails field-wise downstream).
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

// Empty reports whether acquisition produced no usable text.
func (r TextExtractionResult) Empty() bool {
	for _, c := range r.Text {
		switch c {
		case ' ', '\t', '\n', '\r', '\f':
		default:
			return false
		}
	}
	return true
}
