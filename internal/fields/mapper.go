package fields

import (
	"strings"

	"github.com/avollmer/invoice-extractor/internal/ner"
)

// LabelMapping maps recognizer labels to canonical field names. Labels
// without an entry are discarded during mapping. Immutable configuration.
type LabelMapping map[string]string

// DefaultLabelMapping covers the vocabulary of the trained German invoice
// model.
func DefaultLabelMapping() LabelMapping {
	return LabelMapping{
		"RECHNUNGSNUMMER":     "Rechnungsnummer",
		"RECHNUNGSDATUM":      "Datum",
		"LEISTUNGSDATUM":      "Leistungsdatum",
		"ZAHLUNGSZIEL":        "Zahlungsziel",
		"LEISTUNG":            "Leistung",
		"ZWISCHENSUMME_NETTO": "Zwischensumme",
		"UST_BETRAG":          "USt_Betrag",
		"UST_ID":              "UID",
		"STEUERSATZ":          "Steuersatz",
		"BRUTTOBETRAG":        "Betrag (€)",
		"WÄHRUNG":             "Währung",
		"IBAN":                "IBAN",
		"BIC":                 "BIC",
		"FIRMENNAME":          "Firmenname",
		"ADRESSE":             "Adresse",
		"EMAIL":               "E-Mail",
		"RECHNUNGSEMPFÄNGER":  "Rechnungsempfänger",
		"KUNDENNUMMER":        "Kundennummer",
		"BESTELLNUMMER":       "Bestellnummer",
	}
}

// Mapper turns recognizer spans into a canonical field -> normalized value
// map.
type Mapper struct {
	labels   LabelMapping
	registry *Registry
}

func NewMapper(labels LabelMapping, registry *Registry) *Mapper {
	return &Mapper{labels: labels, registry: registry}
}

// Map resolves spans in document order. The first span mapped to a canonical
// field wins; later spans for the same field are ignored. Unmapped labels are
// dropped. Fields with no span stay absent from the result; sentinel
// insertion happens at merge time.
func (m *Mapper) Map(spans []ner.Span) map[string]string {
	out := make(map[string]string, len(spans))
	for _, sp := range spans {
		field, ok := m.labels[sp.Label]
		if !ok {
			continue
		}
		if _, taken := out[field]; taken {
			continue
		}
		val := strings.TrimSpace(sp.Text)
		out[field] = Normalize(m.registry.ClassOf(field), val)
	}
	return out
}
