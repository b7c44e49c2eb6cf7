// Package validate flags cross-field inconsistencies in an extracted record.
// Issues are advisory: they are surfaced next to the record and never decide
// whether it is retained.
package validate

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avollmer/invoice-extractor/constants"
	"github.com/avollmer/invoice-extractor/internal/fields"
)

var mod97 = big.NewInt(97)

// Validate inspects a record and returns a field -> diagnostic map. An empty
// map means no issues.
func Validate(rec fields.Record) map[string]string {
	issues := make(map[string]string)

	if iban, ok := realValue(rec, "IBAN"); ok {
		if err := checkIBAN(iban); err != nil {
			issues["IBAN"] = err.Error()
		}
	}
	if bic, ok := realValue(rec, "BIC"); ok {
		if l := len(bic); l != 8 && l != 11 {
			issues["BIC"] = fmt.Sprintf("BIC hat %d Zeichen, erwartet 8 oder 11", l)
		}
	}

	checkDateOrder(rec, issues)
	checkTotals(rec, issues)
	return issues
}

// realValue returns a field's value unless it is absent or a sentinel.
func realValue(rec fields.Record, name string) (string, bool) {
	v, ok := rec[name]
	if !ok || constants.IsSentinel(v) || v == "" {
		return "", false
	}
	return v, true
}

// checkIBAN runs the ISO 13616 mod-97 test after stripping grouping spaces.
func checkIBAN(iban string) error {
	s := strings.ToUpper(strings.ReplaceAll(iban, " ", ""))
	if len(s) < 15 || len(s) > 34 {
		return fmt.Errorf("IBAN-Länge %d ungültig", len(s))
	}
	rearranged := s[4:] + s[:4]
	var numeric strings.Builder
	for _, c := range rearranged {
		switch {
		case c >= '0' && c <= '9':
			numeric.WriteRune(c)
		case c >= 'A' && c <= 'Z':
			fmt.Fprintf(&numeric, "%d", c-'A'+10)
		default:
			return fmt.Errorf("IBAN enthält ungültiges Zeichen %q", c)
		}
	}
	n, ok := new(big.Int).SetString(numeric.String(), 10)
	if !ok {
		return fmt.Errorf("IBAN nicht prüfbar")
	}
	if new(big.Int).Mod(n, mod97).Int64() != 1 {
		return fmt.Errorf("IBAN-Prüfsumme ungültig")
	}
	return nil
}

// checkDateOrder flags a payment due date earlier than the invoice date.
// Only fires when both dates normalized to ISO form.
func checkDateOrder(rec fields.Record, issues map[string]string) {
	datum, ok1 := realValue(rec, "Datum")
	ziel, ok2 := realValue(rec, "Zahlungsziel")
	if !ok1 || !ok2 {
		return
	}
	if !isISODate(datum) || !isISODate(ziel) {
		return
	}
	if ziel < datum {
		issues["Zahlungsziel"] = fmt.Sprintf("Zahlungsziel %s liegt vor Rechnungsdatum %s", ziel, datum)
	}
}

func isISODate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// checkTotals verifies Zwischensumme + USt_Betrag against Betrag (€) when
// all three are present. One cent of tolerance for rounding.
func checkTotals(rec fields.Record, issues map[string]string) {
	netto, ok1 := parseAmount(rec, "Zwischensumme")
	ust, ok2 := parseAmount(rec, "USt_Betrag")
	brutto, ok3 := parseAmount(rec, "Betrag (€)")
	if !ok1 || !ok2 || !ok3 {
		return
	}
	diff := netto.Add(ust).Sub(brutto).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.01)) {
		issues["Betrag (€)"] = fmt.Sprintf(
			"Zwischensumme %s + USt %s ergibt nicht Betrag %s",
			netto.StringFixed(2), ust.StringFixed(2), brutto.StringFixed(2))
	}
}

func parseAmount(rec fields.Record, name string) (decimal.Decimal, bool) {
	v, ok := realValue(rec, name)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
