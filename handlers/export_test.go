package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/koa-impact/podcount/models"
)

func TestColumnIndexToLetter(t *testing.T) {
	tests := []struct {
		col      int
		expected string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := columnIndexToLetter(tt.col)
			if result != tt.expected {
				t.Errorf("columnIndexToLetter(%d) = %q, expected %q", tt.col, result, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Pod Count 2026", "Pod_Count_2026"},
		{"a/b\\c:d", "a_b_c_d"},
		{"what?*", "what__"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestExportCell(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"nil", nil, ""},
		{"whole float renders as int", 12.0, "12"},
		{"fractional float keeps decimals", 3.5, "3.5"},
		{"string passthrough", "Achiase", "Achiase"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := exportCell(tt.value)
			if result != tt.expected {
				t.Errorf("exportCell(%v) = %q, expected %q", tt.value, result, tt.expected)
			}
		})
	}
}

func TestExportRows(t *testing.T) {
	form := &models.Form{
		Fields: datatypes.JSON(`[
			{"name": "farmer_id", "label": "Farmer ID", "type": "text", "required": true},
			{"name": "medium", "type": "number", "required": true}
		]`),
	}
	submitted := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	responses := []models.FormResponse{
		{
			ID:          uuid.New(),
			Data:        datatypes.JSON(`{"farmer_id": "F-001", "medium": 12}`),
			SubmittedBy: &models.User{Name: "Achiase Field Officer"},
			CreatedAt:   submitted,
		},
		{
			ID:        uuid.New(),
			Data:      datatypes.JSON(`{"farmer_id": "F-002"}`),
			CreatedAt: submitted,
		},
	}

	headers, rows, err := exportRows(form, responses)
	if err != nil {
		t.Fatalf("exportRows() error = %v", err)
	}

	wantHeaders := []string{"Farmer ID", "medium", "Submitted By", "Submitted At"}
	if len(headers) != len(wantHeaders) {
		t.Fatalf("headers = %v", headers)
	}
	for i, h := range wantHeaders {
		if headers[i] != h {
			t.Errorf("headers[%d] = %q, expected %q", i, headers[i], h)
		}
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "F-001" || rows[0][1] != "12" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[0][2] != "Achiase Field Officer" {
		t.Errorf("submitter = %q", rows[0][2])
	}
	if rows[0][3] != "2026-03-01 10:30:00" {
		t.Errorf("timestamp = %q", rows[0][3])
	}
	// Missing values and missing submitter come out as empty cells.
	if rows[1][1] != "" || rows[1][2] != "" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

func TestExportRowsBadData(t *testing.T) {
	form := &models.Form{
		Fields: datatypes.JSON(`[{"name": "a", "type": "text", "required": false}]`),
	}
	responses := []models.FormResponse{
		{ID: uuid.New(), Data: datatypes.JSON(`not json`)},
	}

	if _, _, err := exportRows(form, responses); err == nil {
		t.Errorf("expected error for unreadable response data")
	}
}
