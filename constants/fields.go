package constants

// FieldClass selects which normalizer applies to a canonical field.
type FieldClass string

const (
	ClassAmount FieldClass = "AMOUNT"
	ClassDate   FieldClass = "DATE"
	ClassPlain  FieldClass = "PLAIN"
)

// Sentinel values stored in a record when no value could be extracted.
// The German strings are part of the output contract; downstream consumers
// match on them verbatim.
const (
	NotFound   = "Nicht gefunden"
	NotDefined = "Nicht definiert"
)

// IsSentinel reports whether v is one of the reserved absence markers.
func IsSentinel(v string) bool {
	return v == NotFound || v == NotDefined
}

// DefaultSelectedFields is the field set used when a caller does not choose
// its own selection.
var DefaultSelectedFields = []string{"Rechnungsnummer", "Datum", "Betrag (€)"}
