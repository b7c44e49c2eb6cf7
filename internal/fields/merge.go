package fields

import (
	"github.com/avollmer/invoice-extractor/constants"
)

// Record is the per-document mapping of canonical field name to extracted
// value. Every selected field appears exactly once, holding either a real
// value or one of the sentinels.
type Record map[string]string

// HasData reports whether at least one field resolved to a real value.
// All-sentinel records are failed extractions and must not be accumulated.
func (r Record) HasData() bool {
	for _, v := range r {
		if !constants.IsSentinel(v) {
			return true
		}
	}
	return false
}

// Merger combines recognizer-derived values with pattern fallback.
type Merger struct {
	registry *Registry
}

func NewMerger(registry *Registry) *Merger {
	return &Merger{registry: registry}
}

// BuildRecord resolves each selected field, in precedence order:
//
//  1. non-empty recognizer value (already normalized by the mapper), as-is
//  2. first match of the field's registered pattern against the full text,
//     capture group 1, normalized per the field class
//  3. "Nicht gefunden" when the pattern does not match,
//     "Nicht definiert" when the field has no registered pattern at all
func (m *Merger) BuildRecord(selected []string, nerValues map[string]string, text string) Record {
	rec := make(Record, len(selected))
	for _, field := range selected {
		if v, ok := nerValues[field]; ok && v != "" {
			rec[field] = v
			continue
		}
		spec, ok := m.registry.Lookup(field)
		if !ok {
			rec[field] = constants.NotDefined
			continue
		}
		groups := spec.Pattern.FindStringSubmatch(text)
		if len(groups) < 2 || groups[1] == "" {
			rec[field] = constants.NotFound
			continue
		}
		rec[field] = Normalize(spec.Class, groups[1])
	}
	return rec
}
