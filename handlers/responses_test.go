package handlers

import (
	"strings"
	"testing"
)

func TestParseBulkRequest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRows int
		wantErr  string
	}{
		{"two rows", `{"responses": [{"data": {"a": 1}}, {"data": {"a": 2}}]}`, 2, ""},
		{"empty batch", `{"responses": []}`, 0, "no responses provided"},
		{"missing responses key", `{}`, 0, "no responses provided"},
		{"broken json", `{"responses": [`, 0, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := parseBulkRequest(strings.NewReader(tt.body))
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Fatalf("parseBulkRequest() error = %v, expected %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseBulkRequest() error = %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("expected %d rows, got %d", tt.wantRows, len(rows))
			}
		})
	}
}

func TestParseBulkRequestKeepsRowData(t *testing.T) {
	rows, err := parseBulkRequest(strings.NewReader(
		`{"responses": [{"data": {"farmer_id": "F-001", "medium": 12}}]}`))
	if err != nil {
		t.Fatalf("parseBulkRequest() error = %v", err)
	}
	if rows[0]["farmer_id"] != "F-001" || rows[0]["medium"] != 12.0 {
		t.Errorf("row data mangled: %v", rows[0])
	}
}
