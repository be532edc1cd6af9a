package validator

import (
	"testing"

	"github.com/florapedia/api/internal/model"
)

func validPayload() model.ContributionPlant {
	return model.ContributionPlant{
		ScientificName: "Monstera deliciosa",
		Family:         "Araceae",
		CommonNames:    []string{"Swiss cheese plant"},
		SpeciesDescription: []model.SpeciesSection{
			{Section: "Care", Details: []model.SpeciesDetail{{Label: "Light", Content: "Full sun"}}},
		},
	}
}

func TestValidatePlantPayload(t *testing.T) {
	t.Run("valid payload has no problems", func(t *testing.T) {
		if problems := ValidatePlantPayload(validPayload()); len(problems) != 0 {
			t.Errorf("problems = %v", problems)
		}
	})

	tests := []struct {
		name   string
		mutate func(*model.ContributionPlant)
	}{
		{"missing scientific name", func(p *model.ContributionPlant) { p.ScientificName = "  " }},
		{"lowercase genus", func(p *model.ContributionPlant) { p.ScientificName = "monstera deliciosa" }},
		{"genus only", func(p *model.ContributionPlant) { p.ScientificName = "Monstera" }},
		{"missing family", func(p *model.ContributionPlant) { p.Family = "" }},
		{"unnamed section", func(p *model.ContributionPlant) { p.SpeciesDescription[0].Section = " " }},
		{"unlabeled detail", func(p *model.ContributionPlant) { p.SpeciesDescription[0].Details[0].Label = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			if problems := ValidatePlantPayload(p); len(problems) == 0 {
				t.Error("expected problems, got none")
			}
		})
	}

	t.Run("subspecies and hybrid names accepted", func(t *testing.T) {
		for _, name := range []string{
			"Monstera deliciosa var. borsigiana",
			"Quercus ×warei",
			"Hedera helix",
		} {
			p := validPayload()
			p.ScientificName = name
			if problems := ValidatePlantPayload(p); len(problems) != 0 {
				t.Errorf("%q rejected: %v", name, problems)
			}
		}
	})
}

func TestValidateContribution(t *testing.T) {
	ref := "8d5b3f2e-0000-0000-0000-000000000000"

	tests := []struct {
		name     string
		ctype    string
		plantRef *string
		wantOK   bool
	}{
		{"create without ref", model.ContributionTypeCreate, nil, true},
		{"create with ref", model.ContributionTypeCreate, &ref, false},
		{"update with ref", model.ContributionTypeUpdate, &ref, true},
		{"update without ref", model.ContributionTypeUpdate, nil, false},
		{"unknown type", "replace", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := ValidateContribution(tt.ctype, tt.plantRef, validPayload())
			if tt.wantOK && len(problems) != 0 {
				t.Errorf("problems = %v, want none", problems)
			}
			if !tt.wantOK && len(problems) == 0 {
				t.Error("expected problems, got none")
			}
		})
	}
}
