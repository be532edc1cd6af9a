package diff_test

import (
	"testing"

	"github.com/florapedia/api/internal/diff"
	"github.com/florapedia/api/internal/model"
)

func carePlant() *model.Plant {
	return &model.Plant{
		ID:             "p1",
		ScientificName: "Monstera deliciosa",
		CommonNames:    []string{"Swiss cheese plant", "Split-leaf philodendron"},
		Description:    "A climbing evergreen.",
		Family:         model.Family{ID: "f1", Name: "Araceae"},
		Attributes: []model.Attribute{
			{ID: "a1", Name: "Evergreen"},
			{ID: "a2", Name: "Climbing"},
		},
		Images: []string{"https://img.example/monstera-1.jpg"},
		SpeciesDescription: model.SpeciesSections{
			{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Full sun"},
			}},
		},
	}
}

func proposalFrom(p *model.Plant) model.ContributionPlant {
	attrs := make([]string, 0, len(p.Attributes))
	for _, a := range p.Attributes {
		attrs = append(attrs, a.Name)
	}
	sections := make([]model.SpeciesSection, len(p.SpeciesDescription))
	copy(sections, p.SpeciesDescription)
	return model.ContributionPlant{
		ScientificName:     p.ScientificName,
		CommonNames:        append([]string(nil), p.CommonNames...),
		Description:        p.Description,
		Family:             p.Family.Name,
		Attributes:         attrs,
		Images:             append([]string(nil), p.Images...),
		SpeciesDescription: sections,
	}
}

func TestCompare_IdenticalRecords(t *testing.T) {
	original := carePlant()
	result := diff.Compare(original, proposalFrom(original))

	if result.Changed {
		t.Errorf("Changed = true for identical records")
	}
	for name, fc := range map[string]diff.FieldChange{
		"scientific_name": result.ScientificName,
		"description":     result.Description,
		"family":          result.Family,
	} {
		if fc.Changed {
			t.Errorf("%s flagged changed for identical records", name)
		}
	}
	for name, sd := range map[string]diff.SetDiff{
		"common_name": result.CommonNames,
		"attributes":  result.Attributes,
		"images":      result.Images,
	} {
		if sd.Changed {
			t.Errorf("%s flagged changed for identical records", name)
		}
		for _, el := range sd.Elements {
			if el.New {
				t.Errorf("%s element %q flagged new for identical records", name, el.Value)
			}
		}
	}
	for _, s := range result.Sections {
		if s.Modified {
			t.Errorf("section %q flagged modified for identical records", s.Section.Section)
		}
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		name     string
		original string
		proposed string
		want     bool
	}{
		{"equal", "Araceae", "Araceae", false},
		{"different", "Araceae", "Arecaceae", true},
		{"case sensitive", "araceae", "Araceae", true},
		{"no trimming", "Araceae", "Araceae ", true},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := diff.Scalar(tt.original, tt.proposed); got != tt.want {
				t.Errorf("Scalar(%q, %q) = %v, want %v", tt.original, tt.proposed, got, tt.want)
			}
		})
	}
}

func TestStringSet(t *testing.T) {
	t.Run("identical is unchanged with no new elements", func(t *testing.T) {
		names := []string{"Swiss cheese plant", "Fruit salad plant"}
		d := diff.StringSet(names, names)
		if d.Changed {
			t.Error("Changed = true for identical sequences")
		}
		for _, el := range d.Elements {
			if el.New {
				t.Errorf("element %q flagged new", el.Value)
			}
		}
	})

	t.Run("appended element is the only one flagged new", func(t *testing.T) {
		original := []string{"Swiss cheese plant"}
		proposed := []string{"Swiss cheese plant", "X"}
		d := diff.StringSet(original, proposed)
		if !d.Changed {
			t.Error("Changed = false after append")
		}
		if len(d.Elements) != 2 {
			t.Fatalf("got %d elements, want 2", len(d.Elements))
		}
		if d.Elements[0].New {
			t.Errorf("unchanged element %q flagged new", d.Elements[0].Value)
		}
		if !d.Elements[1].New {
			t.Errorf("appended element %q not flagged new", d.Elements[1].Value)
		}
	})

	t.Run("reordering flags changed but nothing new", func(t *testing.T) {
		d := diff.StringSet([]string{"a", "b"}, []string{"b", "a"})
		if !d.Changed {
			t.Error("Changed = false for reordered sequence")
		}
		for _, el := range d.Elements {
			if el.New {
				t.Errorf("element %q flagged new after reorder", el.Value)
			}
		}
	})

	t.Run("removal flags changed only at the field level", func(t *testing.T) {
		d := diff.StringSet([]string{"a", "b"}, []string{"a"})
		if !d.Changed {
			t.Error("Changed = false after removal")
		}
		if len(d.Elements) != 1 || d.Elements[0].New {
			t.Errorf("unexpected elements %+v", d.Elements)
		}
	})

	t.Run("nil inputs compare as empty", func(t *testing.T) {
		d := diff.StringSet(nil, nil)
		if d.Changed || len(d.Elements) != 0 {
			t.Errorf("nil/nil diff = %+v, want unchanged empty", d)
		}
	})
}

func TestNamedSet(t *testing.T) {
	original := []model.Attribute{{ID: "a1", Name: "Evergreen"}, {ID: "a2", Name: "Climbing"}}

	t.Run("same names unchanged", func(t *testing.T) {
		d := diff.NamedSet(original, []string{"Evergreen", "Climbing"})
		if d.Changed {
			t.Error("Changed = true for matching names")
		}
	})

	t.Run("new name flagged", func(t *testing.T) {
		d := diff.NamedSet(original, []string{"Evergreen", "Climbing", "Epiphytic"})
		if !d.Changed {
			t.Error("Changed = false after adding attribute")
		}
		if !d.Elements[2].New {
			t.Error("added attribute not flagged new")
		}
		if d.Elements[0].New || d.Elements[1].New {
			t.Error("existing attributes flagged new")
		}
	})
}

func TestSections(t *testing.T) {
	original := []model.SpeciesSection{
		{Section: "Care", Details: []model.SpeciesDetail{
			{Label: "Light", Content: "Full sun"},
			{Label: "Water", Content: "Weekly"},
		}},
	}

	tests := []struct {
		name     string
		proposed model.SpeciesSection
		want     bool
	}{
		{
			name: "identical section unmodified",
			proposed: model.SpeciesSection{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Full sun"},
				{Label: "Water", Content: "Weekly"},
			}},
			want: false,
		},
		{
			name: "content change",
			proposed: model.SpeciesSection{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Partial shade"},
				{Label: "Water", Content: "Weekly"},
			}},
			want: true,
		},
		{
			name: "label change",
			proposed: model.SpeciesSection{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Sunlight", Content: "Full sun"},
				{Label: "Water", Content: "Weekly"},
			}},
			want: true,
		},
		{
			name: "detail count change",
			proposed: model.SpeciesSection{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Full sun"},
			}},
			want: true,
		},
		{
			name: "reordered details of equal length",
			proposed: model.SpeciesSection{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Water", Content: "Weekly"},
				{Label: "Light", Content: "Full sun"},
			}},
			want: true,
		},
		{
			name: "unknown section always modified",
			proposed: model.SpeciesSection{Section: "NewSection", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Full sun"},
				{Label: "Water", Content: "Weekly"},
			}},
			want: true,
		},
		{
			name:     "unknown empty section still modified",
			proposed: model.SpeciesSection{Section: "NewSection"},
			want:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diff.Sections(original, []model.SpeciesSection{tt.proposed})
			if len(got) != 1 {
				t.Fatalf("got %d section diffs, want 1", len(got))
			}
			if got[0].Modified != tt.want {
				t.Errorf("Modified = %v, want %v", got[0].Modified, tt.want)
			}
		})
	}
}

func TestCompare_OverallChanged(t *testing.T) {
	t.Run("scalar change sets overall flag", func(t *testing.T) {
		original := carePlant()
		proposed := proposalFrom(original)
		proposed.Description = "A sprawling evergreen."
		result := diff.Compare(original, proposed)
		if !result.Changed {
			t.Error("Changed = false after description edit")
		}
		if !result.Description.Changed {
			t.Error("description not flagged")
		}
		if result.Family.Changed || result.ScientificName.Changed {
			t.Error("untouched scalars flagged")
		}
	})

	t.Run("section change alone sets overall flag", func(t *testing.T) {
		original := carePlant()
		proposed := proposalFrom(original)
		proposed.SpeciesDescription = []model.SpeciesSection{
			{Section: "Care", Details: []model.SpeciesDetail{
				{Label: "Light", Content: "Partial shade"},
			}},
		}
		result := diff.Compare(original, proposed)
		if !result.Changed {
			t.Error("Changed = false after section edit")
		}
	})

	t.Run("family compared by name", func(t *testing.T) {
		original := carePlant()
		proposed := proposalFrom(original)
		proposed.Family = "Arecaceae"
		result := diff.Compare(original, proposed)
		if !result.Family.Changed {
			t.Error("family change not flagged")
		}
		if result.Family.Before != "Araceae" || result.Family.After != "Arecaceae" {
			t.Errorf("family before/after = %q/%q", result.Family.Before, result.Family.After)
		}
	})
}
