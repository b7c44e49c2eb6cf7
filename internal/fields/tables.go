package fields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/avollmer/invoice-extractor/constants"
)

// tableSchema constrains a table override file: field specs with exactly the
// known classes, plus the recognizer label mapping.
const tableSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "fields": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "pattern"],
        "properties": {
          "name":    {"type": "string", "minLength": 1},
          "pattern": {"type": "string", "minLength": 1},
          "class":   {"type": "string", "enum": ["AMOUNT", "DATE", "PLAIN"]}
        }
      }
    },
    "labels": {
      "type": "object",
      "additionalProperties": {"type": "string", "minLength": 1}
    }
  }
}`

var compiledTableSchema = jsonschema.MustCompileString("tables.schema.json", tableSchema)

type tableFile struct {
	Fields []struct {
		Name    string `json:"name"`
		Pattern string `json:"pattern"`
		Class   string `json:"class"`
	} `json:"fields"`
	Labels map[string]string `json:"labels"`
}

// LoadTables reads a JSON override for the pattern registry and label
// mapping, validates it against the embedded schema, and compiles the
// patterns. Every pattern must contain exactly one capture group.
func LoadTables(path string) (*Registry, LabelMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read table file: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode table file: %w", err)
	}
	if err := compiledTableSchema.Validate(doc); err != nil {
		return nil, nil, fmt.Errorf("table file schema: %w", err)
	}

	var tf tableFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, nil, fmt.Errorf("decode table file: %w", err)
	}

	specs := make([]FieldSpec, 0, len(tf.Fields))
	for _, f := range tf.Fields {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: compile pattern: %w", f.Name, err)
		}
		if re.NumSubexp() != 1 {
			return nil, nil, fmt.Errorf("field %q: pattern must have exactly one capture group, has %d", f.Name, re.NumSubexp())
		}
		class := constants.FieldClass(f.Class)
		if class == "" {
			class = constants.ClassPlain
		}
		specs = append(specs, FieldSpec{Name: f.Name, Pattern: re, Class: class})
	}

	registry := NewRegistry(specs)
	labels := LabelMapping(tf.Labels)
	if len(tf.Fields) == 0 {
		registry = DefaultRegistry()
	}
	if len(labels) == 0 {
		labels = DefaultLabelMapping()
	}
	return registry, labels, nil
}
