package fields

import (
	"regexp"

	"github.com/avollmer/invoice-extractor/constants"
)

// FieldSpec describes one extractable canonical field: its name, the pattern
// used for text fallback (exactly one capture group), and the class that
// selects a normalizer.
type FieldSpec struct {
	Name    string
	Pattern *regexp.Regexp
	Class   constants.FieldClass
}

// Registry is the static field/pattern table. Immutable after construction;
// safe for concurrent readers.
type Registry struct {
	specs map[string]FieldSpec
	names []string
}

// NewRegistry builds a registry from specs. Later specs with a duplicate name
// are ignored; no field has two competing patterns.
func NewRegistry(specs []FieldSpec) *Registry {
	r := &Registry{specs: make(map[string]FieldSpec, len(specs))}
	for _, s := range specs {
		if _, exists := r.specs[s.Name]; exists {
			continue
		}
		r.specs[s.Name] = s
		r.names = append(r.names, s.Name)
	}
	return r
}

// Lookup returns the spec for a canonical field name. A false return means
// the field is undefined, not an error: callers classify such fields with
// the "Nicht definiert" sentinel.
func (r *Registry) Lookup(name string) (FieldSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Names returns the registered field names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ClassOf returns the normalizer class for a field, or ClassPlain for
// unregistered names.
func (r *Registry) ClassOf(name string) constants.FieldClass {
	if s, ok := r.specs[name]; ok {
		return s.Class
	}
	return constants.ClassPlain
}

// rawSpec is the pre-compile form of a FieldSpec, used by the default table
// and by JSON overrides.
type rawSpec struct {
	Name    string
	Pattern string
	Class   constants.FieldClass
}

// defaultSpecs is the built-in German invoice field table. Patterns embed
// their own tolerance for alternate label spellings, optional colons and
// whitespace. Each has exactly one capture group.
var defaultSpecs = []rawSpec{
	{"Rechnungsnummer", `Rechnungsnummer[:\s]*([A-Z0-9\-\/]+)`, constants.ClassPlain},
	{"Rechnungsdatum", `(?:Rechnungs-?datum|Datum)[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},
	{"Datum", `(?:Rechnungs-?datum|Datum)[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},

	{"Betrag (€)", `(?:Gesamtbetrag(?:\s*\(.*?\))?|Betrag|Summe|Rechnungsbetrag|Brutto)[:\s]*(?:EUR|€)?\s*([\d.,]+)`, constants.ClassAmount},
	{"Umsatzsteuer", `(?:USt\.?|Umsatzsteuer)\s*(?:\(\d+%?\))?[:\s]*(?:EUR|€)?\s*([\d.,]+)`, constants.ClassAmount},
	{"USt_Betrag", `(?:USt\.?|Umsatzsteuer)\s*(?:\(\d+%?\))?[:\s]*(?:EUR|€)?\s*([\d.,]+)`, constants.ClassAmount},
	{"Zwischensumme", `Zwischensumme\s*(?:\(.*?\))?[:\s]*(?:EUR|€)?\s*([\d.,]+)`, constants.ClassAmount},
	{"Skonto", `Skonto[:\s]*(?:EUR|€)?\s*([\d.,]+)`, constants.ClassAmount},

	{"Zahlungsziel", `Zahlungsziel[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},
	{"Zahlbar bis", `(?:Zahlbar bis|Fälligkeitsdatum)[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},
	{"Leistungsdatum", `(?:Lieferdatum|Leistungsdatum)[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},
	{"Lieferdatum", `(?:Lieferdatum|Leistungsdatum)[:\s]*(\d{2}\.\d{2}\.\d{4})`, constants.ClassDate},

	{"Zahlungsart", `Zahlungsart[:\s]*([A-Za-zäöüÄÖÜß ]+)`, constants.ClassPlain},
	{"Bestellnummer", `(?:Bestellnummer|Best\.?-?Nr\.?)[:\s]*([A-Z0-9\-\/]+)`, constants.ClassPlain},
	{"Artikelnummer", `(?:Artikelnummer|Art\.?-?Nr\.?)[:\s]*([A-Z0-9\-]+)`, constants.ClassPlain},

	{"UID", `UID[:\s]*([A-Z]{2}[A-Z0-9]+)`, constants.ClassPlain},
	{"Kundennummer", `Kundennummer[:\s]*([A-Z0-9\-]+)`, constants.ClassPlain},
	{"IBAN", `IBAN[:\s]*([A-Z]{2}\d{2}(?:[ ]?\d{4}){4,5})`, constants.ClassPlain},
	{"BIC", `BIC[:\s]*([A-Z0-9]{8,11})`, constants.ClassPlain},

	{"Name", `Name[:\s]*([A-ZÄÖÜa-zäöüß\- ]+)`, constants.ClassPlain},
	{"Vorname", `Vorname[:\s]*([A-ZÄÖÜa-zäöüß\-]+)`, constants.ClassPlain},
	{"Nachname", `Nachname[:\s]*([A-ZÄÖÜa-zäöüß\-]+)`, constants.ClassPlain},
	{"Firmenname", `(?:Firma|Unternehmen|Lieferant|Steuerberatung)[:\s]*([A-ZÄÖÜa-zäöüß0-9 &\-]+)`, constants.ClassPlain},

	{"Adresse", `(?:Adresse|Anschrift)[:\s]*([\wäöüÄÖÜß\s.,\-]+)`, constants.ClassPlain},
	{"PLZ", `(?:PLZ|Postleitzahl)[:\s]*(\d{4,5})`, constants.ClassPlain},
	{"Ort", `(?:Ort|Stadt)[:\s]*([A-ZÄÖÜa-zäöüß\- ]+)`, constants.ClassPlain},
	{"Land", `Land[:\s]*([A-ZÄÖÜa-zäöüß ]+)`, constants.ClassPlain},
	{"E-Mail", `(?:E-?Mail)[:\s]*([\w\.-]+@[\w\.-]+\.\w+)`, constants.ClassPlain},
	{"Telefonnummer", `(?:Tel\.?|Telefon)[:\s]*([\d\/ +()-]{7,})`, constants.ClassPlain},
}

// DefaultRegistry returns the built-in field table.
func DefaultRegistry() *Registry {
	return NewRegistry(compileSpecs(defaultSpecs))
}

func compileSpecs(raw []rawSpec) []FieldSpec {
	out := make([]FieldSpec, 0, len(raw))
	for _, rs := range raw {
		out = append(out, FieldSpec{
			Name:    rs.Name,
			Pattern: regexp.MustCompile(rs.Pattern),
			Class:   rs.Class,
		})
	}
	return out
}
