package models

import (
	"encoding/json"
	"testing"
)

func TestParseSchemaLegacyArray(t *testing.T) {
	raw := []byte(`[
		{"name": "farmer_id", "type": "text", "required": true},
		{"name": "medium", "type": "number", "required": true, "min": 0}
	]`)

	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	if len(schema.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(schema.Sections))
	}
	if schema.Sections[0].Title != LegacySectionTitle {
		t.Errorf("section title = %q, expected %q", schema.Sections[0].Title, LegacySectionTitle)
	}
	if len(schema.Sections[0].Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(schema.Sections[0].Fields))
	}
	if schema.Sections[0].Fields[1].Min == nil || *schema.Sections[0].Fields[1].Min != 0 {
		t.Errorf("min not preserved on legacy field")
	}
}

func TestParseSchemaCanonical(t *testing.T) {
	raw := []byte(`{"sections": [
		{"title": "Pod Count", "fields": [
			{"name": "small_cherelles", "type": "number", "required": true}
		]}
	]}`)

	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	if len(schema.Sections) != 1 || schema.Sections[0].Title != "Pod Count" {
		t.Fatalf("unexpected sections: %+v", schema.Sections)
	}
}

func TestParseSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty document", ""},
		{"whitespace only", "   "},
		{"broken array", `[{"name":`},
		{"broken object", `{"sections":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchema([]byte(tt.raw)); err == nil {
				t.Errorf("ParseSchema(%q) expected error, got nil", tt.raw)
			}
		})
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	raw := []byte(`[{"name": "farmer_id", "type": "text", "required": true}]`)

	schema, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	encoded, err := schema.JSON()
	if err != nil {
		t.Fatalf("Schema.JSON() error = %v", err)
	}

	// Re-parsing the canonical encoding must give the same schema back.
	again, err := ParseSchema(encoded)
	if err != nil {
		t.Fatalf("ParseSchema(round trip) error = %v", err)
	}
	a, _ := json.Marshal(schema)
	b, _ := json.Marshal(again)
	if string(a) != string(b) {
		t.Errorf("round trip changed schema: %s != %s", a, b)
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		wantErr bool
	}{
		{
			"valid schema",
			Schema{Sections: []Section{{Title: "S", Fields: []Field{
				{Name: "a", Type: FieldText},
				{Name: "b", Type: FieldNumber},
			}}}},
			false,
		},
		{
			"no fields",
			Schema{Sections: []Section{{Title: "S"}}},
			true,
		},
		{
			"empty field name",
			Schema{Sections: []Section{{Fields: []Field{{Name: "", Type: FieldText}}}}},
			true,
		},
		{
			"duplicate field name across sections",
			Schema{Sections: []Section{
				{Fields: []Field{{Name: "a", Type: FieldText}}},
				{Fields: []Field{{Name: "a", Type: FieldNumber}}},
			}},
			true,
		},
		{
			"unknown field type",
			Schema{Sections: []Section{{Fields: []Field{{Name: "a", Type: "checkbox"}}}}},
			true,
		},
		{
			"dropdown without options",
			Schema{Sections: []Section{{Fields: []Field{{Name: "a", Type: FieldDropdown}}}}},
			true,
		},
		{
			"dropdown with options",
			Schema{Sections: []Section{{Fields: []Field{
				{Name: "a", Type: FieldDropdown, Options: []string{"x", "y"}},
			}}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFieldByName(t *testing.T) {
	schema := Schema{Sections: []Section{
		{Title: "A", Fields: []Field{{Name: "x", Type: FieldText}}},
		{Title: "B", Fields: []Field{{Name: "y", Type: FieldNumber}}},
	}}

	if f, ok := schema.FieldByName("y"); !ok || f.Type != FieldNumber {
		t.Errorf("FieldByName(y) = %+v, %v", f, ok)
	}
	if _, ok := schema.FieldByName("missing"); ok {
		t.Errorf("FieldByName(missing) found a field")
	}
}
