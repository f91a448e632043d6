package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

// exportRows flattens a form's responses into header labels plus one string
// row per response. Columns follow schema order, then submitter and time.
func exportRows(form *models.Form, responses []models.FormResponse) (headers []string, rows [][]string, err error) {
	schema, err := form.Schema()
	if err != nil {
		return nil, nil, err
	}
	fields := schema.AllFields()

	for _, f := range fields {
		label := f.Label
		if label == "" {
			label = f.Name
		}
		headers = append(headers, label)
	}
	headers = append(headers, "Submitted By", "Submitted At")

	for _, resp := range responses {
		var data map[string]interface{}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, nil, fmt.Errorf("response %s has unreadable data: %w", resp.ID, err)
		}

		row := make([]string, 0, len(fields)+2)
		for _, f := range fields {
			row = append(row, exportCell(data[f.Name]))
		}
		submitter := ""
		if resp.SubmittedBy != nil {
			submitter = resp.SubmittedBy.Name
		}
		row = append(row, submitter, resp.CreatedAt.Format("2006-01-02 15:04:05"))
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func exportCell(v interface{}) string {
	if v == nil {
		return ""
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}

// loadExport resolves the form, checks view access and collects its
// responses oldest-first.
func loadExport(w http.ResponseWriter, r *http.Request) (*models.Form, []models.FormResponse, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return nil, nil, false
	}
	id := mux.Vars(r)["id"]

	var form models.Form
	if err := config.DB.First(&form, "id = ?", id).Error; err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return nil, nil, false
	}

	grant := loadGrant(user.ID, form.ID)
	if !models.CanPerform(user, &form, grant, models.ActionView) {
		http.Error(w, "you do not have access to this form", http.StatusForbidden)
		return nil, nil, false
	}

	var responses []models.FormResponse
	err := config.DB.Preload("SubmittedBy").
		Where("form_id = ?", form.ID).
		Order("created_at ASC").
		Find(&responses).Error
	if err != nil {
		http.Error(w, "failed to fetch responses", http.StatusInternalServerError)
		return nil, nil, false
	}
	return &form, responses, true
}

// ExportResponsesToExcel streams a form's responses as a styled xlsx file.
// GET /api/v1/forms/{id}/export/excel
func ExportResponsesToExcel(w http.ResponseWriter, r *http.Request) {
	form, responses, ok := loadExport(w, r)
	if !ok {
		return
	}

	headers, rows, err := exportRows(form, responses)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	excelFile, err := buildResponsesWorkbook(form.Name, headers, rows)
	if err != nil {
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}

	buffer, err := excelFile.WriteToBuffer()
	if err != nil {
		http.Error(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(form.Name), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

// ExportResponsesToCSV streams a form's responses as CSV.
// GET /api/v1/forms/{id}/export/csv
func ExportResponsesToCSV(w http.ResponseWriter, r *http.Request) {
	form, responses, ok := loadExport(w, r)
	if !ok {
		return
	}

	headers, rows, err := exportRows(form, responses)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Write(headers)
	for _, row := range rows {
		writer.Write(row)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		http.Error(w, "Failed to generate CSV file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", sanitizeFilename(form.Name), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// buildResponsesWorkbook lays out one sheet: form name, timestamp, a styled
// header row and the data rows.
func buildResponsesWorkbook(formName string, headers []string, rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Responses"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", formName)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Exported: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		f.SetColWidth(sheetName, columnIndexToLetter(colIdx+1), columnIndexToLetter(colIdx+1), 20)
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
			f.SetCellStyle(sheetName, cell, cell, dataStyle)
		}
	}

	f.DeleteSheet("Sheet1")

	return f, nil
}

func sanitizeFilename(filename string) string {
	replacements := map[rune]rune{
		'/':  '_',
		'\\': '_',
		':':  '_',
		'*':  '_',
		'?':  '_',
		'"':  '_',
		'<':  '_',
		'>':  '_',
		'|':  '_',
		' ':  '_',
	}

	result := []rune{}
	for _, char := range filename {
		if replacement, exists := replacements[char]; exists {
			result = append(result, replacement)
		} else {
			result = append(result, char)
		}
	}

	return string(result)
}

func columnIndexToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+(col%26))) + result
		col /= 26
	}
	return result
}
