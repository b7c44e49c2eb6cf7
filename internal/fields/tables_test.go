package fields

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avollmer/invoice-extractor/constants"
)

func writeTableFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tables.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTables(t *testing.T) {
	path := writeTableFile(t, `{
		"fields": [
			{"name": "Vertragsnummer", "pattern": "Vertragsnummer[:\\s]*([A-Z0-9-]+)", "class": "PLAIN"},
			{"name": "Netto", "pattern": "Netto[:\\s]*([\\d.,]+)", "class": "AMOUNT"}
		],
		"labels": {"VERTRAGSNUMMER": "Vertragsnummer"}
	}`)

	registry, labels, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	spec, ok := registry.Lookup("Vertragsnummer")
	if !ok {
		t.Fatal("Vertragsnummer missing after load")
	}
	if spec.Class != constants.ClassPlain {
		t.Errorf("class = %q", spec.Class)
	}
	if registry.ClassOf("Netto") != constants.ClassAmount {
		t.Errorf("Netto class = %q", registry.ClassOf("Netto"))
	}
	if labels["VERTRAGSNUMMER"] != "Vertragsnummer" {
		t.Errorf("labels = %v", labels)
	}
}

func TestLoadTablesRejectsBadClass(t *testing.T) {
	path := writeTableFile(t, `{"fields": [{"name": "X", "pattern": "(a)", "class": "MONEY"}]}`)
	if _, _, err := LoadTables(path); err == nil {
		t.Fatal("expected schema violation for unknown class")
	}
}

func TestLoadTablesRejectsWrongGroupCount(t *testing.T) {
	path := writeTableFile(t, `{"fields": [{"name": "X", "pattern": "(a)(b)"}]}`)
	if _, _, err := LoadTables(path); err == nil {
		t.Fatal("expected error for two capture groups")
	}
	path = writeTableFile(t, `{"fields": [{"name": "X", "pattern": "nogroup"}]}`)
	if _, _, err := LoadTables(path); err == nil {
		t.Fatal("expected error for zero capture groups")
	}
}

func TestLoadTablesEmptySectionsFallBackToDefaults(t *testing.T) {
	path := writeTableFile(t, `{}`)
	registry, labels, err := LoadTables(path)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if _, ok := registry.Lookup("Rechnungsnummer"); !ok {
		t.Fatal("default registry not applied")
	}
	if labels["RECHNUNGSNUMMER"] != "Rechnungsnummer" {
		t.Fatal("default label mapping not applied")
	}
}
