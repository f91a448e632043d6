package models

// Canonical names of the auto-provisioned pod-count templates. listForms
// checks for these per factory before synthesizing the template.
const (
	ConventionalTemplateName = "Conventional Cocoa Pod Count Template"
	OrganicTemplateName      = "Organic Cocoa Pod Count Template"
)

func minZero() *float64 {
	v := 0.0
	return &v
}

func podCountFields(organic bool) []Field {
	fields := []Field{
		{Name: "farmer_id", Type: FieldText, Label: "Farmer ID", Required: true},
		{Name: "farmer_name", Type: FieldText, Label: "Farmer Name", Required: true},
		{Name: "national_id", Type: FieldText, Label: "National ID Number", Required: true},
		{Name: "phone_number", Type: FieldTel, Label: "Phone Number", Required: true},
		{Name: "operational_area", Type: FieldText, Label: "Operational Area", Required: true},
		{Name: "community", Type: FieldText, Label: "Community", Required: true},
	}
	if organic {
		fields = append(fields, Field{
			Name: "organic_certification_id", Type: FieldText,
			Label: "Organic Certification ID", Required: true,
		})
	}
	fields = append(fields,
		Field{Name: "small_cherelles", Type: FieldNumber, Label: "Small Cherelles (S)", Required: true, Min: minZero()},
		Field{Name: "medium", Type: FieldNumber, Label: "Medium (M)", Required: true, Min: minZero()},
		Field{Name: "large", Type: FieldNumber, Label: "Large (L)", Required: true, Min: minZero()},
		Field{Name: "matured_unriped", Type: FieldNumber, Label: "Matured Unriped (MUR)", Required: true, Min: minZero()},
		Field{Name: "matured_riped", Type: FieldNumber, Label: "Matured Riped (MR)", Required: true, Min: minZero()},
		Field{Name: "diseased", Type: FieldNumber, Label: "Diseased (D)", Required: true, Min: minZero()},
		Field{Name: "count_date", Type: FieldDate, Label: "Count Date", Required: true},
	)
	return fields
}

// TemplateNameForFactoryType returns the canonical template name a factory
// of the given type is provisioned with. Anything that is not ORGANIC gets
// the conventional template.
func TemplateNameForFactoryType(factoryType string) string {
	if factoryType == FactoryOrganic {
		return OrganicTemplateName
	}
	return ConventionalTemplateName
}

// DefaultTemplate builds the unsaved default pod-count form for a factory
// type: name, description, form type and a single-section schema.
func DefaultTemplate(factoryType string) (name, description, formType string, schema Schema) {
	if factoryType == FactoryOrganic {
		return OrganicTemplateName,
			"Default template for organic cocoa pod counting exercise",
			FormOrganic,
			Schema{Sections: []Section{{Title: "Pod Count", Fields: podCountFields(true)}}}
	}
	return ConventionalTemplateName,
		"Default template for conventional cocoa pod counting exercise",
		FormConventional,
		Schema{Sections: []Section{{Title: "Pod Count", Fields: podCountFields(false)}}}
}
