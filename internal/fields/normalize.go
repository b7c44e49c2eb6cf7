package fields

import (
	"regexp"
	"strings"
	"time"

	"github.com/avollmer/invoice-extractor/constants"
)

var (
	reDecimalNum = regexp.MustCompile(`[+-]?\d+(\.\d+)?`)
	reEmbedDate  = regexp.MustCompile(`\b(\d{1,2}\.\d{1,2}\.\d{2,4})\b`)
	reEuroMarker = regexp.MustCompile(`(?i)EUR`)
)

// dateLayouts in priority order: DACH day-first with 4- then 2-digit year,
// then ISO, then dotted year-first.
var dateLayouts = []string{"02.01.2006", "02.01.06", "2006-01-02", "2006.01.02"}

// NormalizeAmount canonicalizes a DACH-locale amount string to a plain
// decimal with "." as the decimal separator ("EUR 2.160,00" -> "2160.00").
// Lenient: if no number can be found the cleaned string is returned as-is.
// Idempotent: already-clean input passes through unchanged.
func NormalizeAmount(raw string) string {
	if raw == "" {
		return raw
	}
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "€", "")
	s = reEuroMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ReplaceAll(s, " ", "")
	// DACH convention: "." separates thousands, "," separates decimals.
	// Dots are dropped only when a comma is present, so an already
	// canonical "2160.00" survives a second pass unchanged.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if m := reDecimalNum.FindString(s); m != "" {
		return m
	}
	return s
}

// NormalizeDate canonicalizes a date string to ISO 8601 ("25.10.2025" ->
// "2025-10-25"). Unparsable input degrades to the trimmed original; a date
// embedded in surrounding text is retried once on its own.
func NormalizeDate(raw string) string {
	if raw == "" {
		return raw
	}
	s := strings.TrimSpace(strings.ReplaceAll(raw, " ", " "))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := reEmbedDate.FindString(s); m != "" && m != s {
		return NormalizeDate(m)
	}
	return s
}

// Normalize routes a value through the normalizer selected by class.
// ClassPlain values pass through untouched.
func Normalize(class constants.FieldClass, value string) string {
	switch class {
	case constants.ClassAmount:
		return NormalizeAmount(value)
	case constants.ClassDate:
		return NormalizeDate(value)
	}
	return value
}
