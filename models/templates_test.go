package models

import "testing"

func TestDefaultTemplate(t *testing.T) {
	tests := []struct {
		factoryType  string
		wantName     string
		wantFormType string
		wantCertID   bool
	}{
		{FactoryOrganic, OrganicTemplateName, FormOrganic, true},
		{FactoryConventional, ConventionalTemplateName, FormConventional, false},
		{FactoryProcessing, ConventionalTemplateName, FormConventional, false},
		{FactoryOther, ConventionalTemplateName, FormConventional, false},
	}

	for _, tt := range tests {
		t.Run(tt.factoryType, func(t *testing.T) {
			name, description, formType, schema := DefaultTemplate(tt.factoryType)
			if name != tt.wantName {
				t.Errorf("name = %q, expected %q", name, tt.wantName)
			}
			if description == "" {
				t.Errorf("description is empty")
			}
			if formType != tt.wantFormType {
				t.Errorf("formType = %q, expected %q", formType, tt.wantFormType)
			}
			if err := schema.Validate(); err != nil {
				t.Errorf("template schema invalid: %v", err)
			}
			_, hasCert := schema.FieldByName("organic_certification_id")
			if hasCert != tt.wantCertID {
				t.Errorf("organic_certification_id present = %v, expected %v", hasCert, tt.wantCertID)
			}
		})
	}
}

func TestTemplateNameForFactoryType(t *testing.T) {
	if got := TemplateNameForFactoryType(FactoryOrganic); got != OrganicTemplateName {
		t.Errorf("ORGANIC template name = %q", got)
	}
	if got := TemplateNameForFactoryType(FactoryStorage); got != ConventionalTemplateName {
		t.Errorf("STORAGE template name = %q", got)
	}
}

func TestPodCountFieldsAreRequiredCounts(t *testing.T) {
	_, _, _, schema := DefaultTemplate(FactoryConventional)

	counts := []string{"small_cherelles", "medium", "large", "matured_unriped", "matured_riped", "diseased"}
	for _, name := range counts {
		f, ok := schema.FieldByName(name)
		if !ok {
			t.Fatalf("field %q missing from template", name)
		}
		if f.Type != FieldNumber || !f.Required {
			t.Errorf("field %q = %+v, expected required number", name, f)
		}
		if f.Min == nil || *f.Min != 0 {
			t.Errorf("field %q has no zero minimum", name)
		}
	}
}
