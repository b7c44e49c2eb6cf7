package ocr

import (
	"context"
	"errors"
	"testing"
)

// stubRunner returns canned output per command name.
type stubRunner struct {
	stdout map[string][]byte
	errs   map[string]error
	calls  []string
}

func (s *stubRunner) Run(_ context.Context, name string, _ ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	return s.stdout[name], nil, s.errs[name]
}

func TestExtractUsesTextLayer(t *testing.T) {
	r := &stubRunner{stdout: map[string][]byte{
		"pdftotext": []byte("Rechnungsnummer: RE-1\n"),
	}}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	res, err := e.Extract(context.Background(), "rechnung.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Method != "pdf-text" {
		t.Fatalf("method = %q", res.Method)
	}
	if res.Text != "Rechnungsnummer: RE-1" {
		t.Fatalf("text = %q", res.Text)
	}
	for _, c := range r.calls {
		if c == "pdftoppm" || c == "tesseract" {
			t.Fatal("OCR fallback must not run when the text layer has content")
		}
	}
}

func TestExtractFallsBackToOCROnEmptyTextLayer(t *testing.T) {
	r := &stubRunner{
		stdout: map[string][]byte{"pdftotext": []byte("  \n\f \n")},
		errs:   map[string]error{"pdftoppm": errors.New("not installed")},
	}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	_, err := e.Extract(context.Background(), "scan.pdf")
	if err == nil {
		t.Fatal("expected error from failing OCR fallback")
	}
	found := false
	for _, c := range r.calls {
		if c == "pdftoppm" {
			found = true
		}
	}
	if !found {
		t.Fatal("empty text layer must trigger the OCR fallback")
	}
}

func TestExtractRejectsUnknownExtension(t *testing.T) {
	e := NewExtractor(Config{}, nil)
	e.runner = &stubRunner{}
	if _, err := e.Extract(context.Background(), "bild.png"); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestCleanup(t *testing.T) {
	in := "Zeile eins  \r\nZeile\tzwei\n\n\n\n\nZeile drei\n"
	want := "Zeile eins\nZeile zwei\n\nZeile drei"
	if got := Cleanup(in); got != want {
		t.Fatalf("Cleanup = %q, want %q", got, want)
	}
	if got := Cleanup(""); got != "" {
		t.Fatalf("Cleanup(\"\") = %q", got)
	}
}
