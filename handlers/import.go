package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/koa-impact/podcount/config"
	"github.com/koa-impact/podcount/models"
)

const maxImportSize = 10 << 20 // 10 MB

var importDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// ImportForm builds a new form from an uploaded CSV or Excel file: the
// header row becomes the schema, field types are inferred from the column
// values, and every data row is stored as a response.
// POST /api/v1/forms/import  (multipart: file, optional name, factoryId)
func ImportForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	factoryID, err := parseUUID(r.FormValue("factoryId"))
	if err != nil {
		http.Error(w, "invalid factoryId", http.StatusBadRequest)
		return
	}
	var factory models.Factory
	if err := config.DB.First(&factory, "id = ?", factoryID).Error; err != nil {
		http.Error(w, "factory not found", http.StatusNotFound)
		return
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx", ".xls":
		rows, err = readExcelRows(file)
	default:
		http.Error(w, "unsupported file type, expected .csv, .xlsx or .xls", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "could not read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	headers, dataRows := splitImportRows(rows)
	if len(headers) == 0 {
		http.Error(w, "file has no header row", http.StatusBadRequest)
		return
	}
	if len(dataRows) == 0 {
		http.Error(w, "file has no data rows", http.StatusBadRequest)
		return
	}

	schema := inferSchema(headers, dataRows)
	if err := schema.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	description := r.FormValue("description")
	if description == "" {
		description = fmt.Sprintf("Imported from %s", header.Filename)
	}

	fields, err := schema.JSON()
	if err != nil {
		http.Error(w, "failed to encode schema", http.StatusInternalServerError)
		return
	}

	form := models.Form{
		Name:        name,
		Description: description,
		Type:        models.FormImported,
		Fields:      fields,
		FactoryID:   factory.ID,
		CreatedByID: user.ID,
	}
	if err := createFormWithGrants(&form); err != nil {
		if !isDuplicateKey(err) {
			log.Printf("import create failed: %v", err)
			http.Error(w, "failed to create form", http.StatusInternalServerError)
			return
		}
		// Name taken in this factory: retry once with a timestamp suffix.
		form.ID = uuid.Nil
		form.Name = conflictRename(name, time.Now())
		if err := createFormWithGrants(&form); err != nil {
			log.Printf("import create retry failed: %v", err)
			http.Error(w, "failed to create form", http.StatusInternalServerError)
			return
		}
	}

	var count int
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		names := schema.AllFields()
		for _, row := range dataRows {
			data := make(map[string]interface{}, len(names))
			for i, field := range names {
				if i < len(row) {
					data[field.Name] = row[i]
				} else {
					data[field.Name] = ""
				}
			}
			raw, err := json.Marshal(models.NormalizeData(data))
			if err != nil {
				return err
			}
			resp := models.FormResponse{
				FormID:        form.ID,
				Data:          datatypes.JSON(raw),
				SubmittedByID: user.ID,
			}
			if err := tx.Create(&resp).Error; err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		log.Printf("import rows for form %s failed: %v", form.ID, err)
		http.Error(w, "failed to import rows", http.StatusInternalServerError)
		return
	}

	config.DB.Preload("Factory").Preload("CreatedBy").First(&form, "id = ?", form.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"form":          form.ToDTO(models.Permissions(user, &form, nil)),
		"importedCount": count,
	})
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readExcelRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// splitImportRows separates the header row from the data rows, dropping rows
// that are entirely blank.
func splitImportRows(rows [][]string) (headers []string, dataRows [][]string) {
	for _, row := range rows {
		if rowIsBlank(row) {
			continue
		}
		if headers == nil {
			for _, h := range row {
				headers = append(headers, strings.TrimSpace(h))
			}
			continue
		}
		dataRows = append(dataRows, row)
	}
	return headers, dataRows
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// conflictRename derives the retry name used when an imported form's name is
// already taken in its factory.
func conflictRename(name string, at time.Time) string {
	return fmt.Sprintf("%s (%s)", name, at.Format("2006-01-02 15:04:05"))
}

// inferSchema builds a single-section schema from the header labels and the
// column values. Every imported field is required; colliding header slugs get
// numeric suffixes until unique.
func inferSchema(headers []string, rows [][]string) models.Schema {
	fields := make([]models.Field, 0, len(headers))
	seen := make(map[string]bool, len(headers))

	for i, label := range headers {
		if label == "" {
			label = fmt.Sprintf("Column %d", i+1)
		}
		base := fieldNameFromLabel(label)
		name := base
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		seen[name] = true

		var values []string
		for _, row := range rows {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				values = append(values, strings.TrimSpace(row[i]))
			}
		}

		fields = append(fields, models.Field{
			Name:     name,
			Label:    label,
			Type:     inferFieldType(values),
			Required: true,
		})
	}

	return models.Schema{Sections: []models.Section{{Title: "Imported Fields", Fields: fields}}}
}

// inferFieldType picks the narrowest type every non-empty value fits: date,
// then number, falling back to text. Empty columns are text.
func inferFieldType(values []string) string {
	if len(values) == 0 {
		return models.FieldText
	}

	allDates := true
	for _, v := range values {
		if !looksLikeDate(v) {
			allDates = false
			break
		}
	}
	if allDates {
		return models.FieldDate
	}

	allNumbers := true
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allNumbers = false
			break
		}
	}
	if allNumbers {
		return models.FieldNumber
	}

	return models.FieldText
}

func looksLikeDate(s string) bool {
	for _, layout := range importDateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// fieldNameFromLabel derives a snake_case response key from a column label.
func fieldNameFromLabel(label string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "field"
	}
	return name
}
