package diff

import (
	"github.com/florapedia/api/internal/model"
)

// Package diff classifies the differences between an original plant record
// and the candidate record carried by an update contribution. All functions
// are pure: inputs are never mutated and absent collections compare as empty.
//
// Set-valued fields (common names, attributes, images) are compared in two
// modes at once: the Changed flag uses ordered-sequence equality, so a pure
// reordering still reads as a change, while per-element New flags use
// membership only. Elements present only in the original are not surfaced
// per-element; the field-level Changed flag is the only signal for removals.

// FieldChange is the comparison result for a scalar field.
type FieldChange struct {
	Changed bool   `json:"changed"`
	Before  string `json:"before"`
	After   string `json:"after"`
}

// Element is one entry of a proposed set-valued field. New means the value
// appears nowhere in the original set.
type Element struct {
	Value string `json:"value"`
	New   bool   `json:"isNew"`
}

// SetDiff is the comparison result for a set-valued field.
type SetDiff struct {
	Changed  bool      `json:"changed"`
	Elements []Element `json:"elements"`
}

// SectionDiff pairs a proposed description section with its verdict.
type SectionDiff struct {
	Section  model.SpeciesSection `json:"section"`
	Modified bool                 `json:"modified"`
}

// Result is the full structured diff for one update contribution.
type Result struct {
	ScientificName FieldChange   `json:"scientific_name"`
	Description    FieldChange   `json:"description"`
	Family         FieldChange   `json:"family"`
	CommonNames    SetDiff       `json:"common_name"`
	Attributes     SetDiff       `json:"attributes"`
	Images         SetDiff       `json:"images"`
	Sections       []SectionDiff `json:"species_description"`
	Changed        bool          `json:"changed"`
}

// Scalar reports whether two scalar values differ. Exact string equality,
// no normalization or case folding.
func Scalar(original, proposed string) bool {
	return original != proposed
}

// StringSet compares two ordered string sequences.
func StringSet(original, proposed []string) SetDiff {
	d := SetDiff{
		Changed:  !orderedEqual(original, proposed),
		Elements: make([]Element, 0, len(proposed)),
	}
	for _, v := range proposed {
		d.Elements = append(d.Elements, Element{Value: v, New: !contains(original, v)})
	}
	return d
}

// NamedSet compares original catalog entities against proposed names,
// keyed on the entity name.
func NamedSet(original []model.Attribute, proposed []string) SetDiff {
	names := make([]string, 0, len(original))
	for _, e := range original {
		names = append(names, e.Name)
	}
	return StringSet(names, proposed)
}

// Sections classifies every proposed section. A section is modified when no
// same-named section exists in the original, when the detail lists differ in
// length, or when any positional detail pair differs in label or content.
// Sections present only in the original are not reported.
func Sections(original, proposed []model.SpeciesSection) []SectionDiff {
	out := make([]SectionDiff, 0, len(proposed))
	for _, sec := range proposed {
		out = append(out, SectionDiff{
			Section:  sec,
			Modified: sectionModified(original, sec),
		})
	}
	return out
}

func sectionModified(original []model.SpeciesSection, proposed model.SpeciesSection) bool {
	var match *model.SpeciesSection
	for i := range original {
		if original[i].Section == proposed.Section {
			match = &original[i]
			break
		}
	}
	if match == nil {
		return true
	}

	if len(match.Details) != len(proposed.Details) {
		return true
	}

	// Positional comparison: equal-length reorderings count as modified
	// unless label and content line up index by index.
	for i := range match.Details {
		if match.Details[i].Label != proposed.Details[i].Label ||
			match.Details[i].Content != proposed.Details[i].Content {
			return true
		}
	}

	return false
}

// Compare produces the full diff between the stored plant and the candidate
// record proposed by an update contribution.
func Compare(original *model.Plant, proposed model.ContributionPlant) Result {
	r := Result{
		ScientificName: scalarChange(original.ScientificName, proposed.ScientificName),
		Description:    scalarChange(original.Description, proposed.Description),
		Family:         scalarChange(original.Family.Name, proposed.Family),
		CommonNames:    StringSet(original.CommonNames, proposed.CommonNames),
		Attributes:     NamedSet(original.Attributes, proposed.Attributes),
		Images:         StringSet(original.Images, proposed.Images),
		Sections:       Sections(original.SpeciesDescription, proposed.SpeciesDescription),
	}

	r.Changed = r.ScientificName.Changed ||
		r.Description.Changed ||
		r.Family.Changed ||
		r.CommonNames.Changed ||
		r.Attributes.Changed ||
		r.Images.Changed
	for _, s := range r.Sections {
		if s.Modified {
			r.Changed = true
			break
		}
	}

	return r
}

func scalarChange(before, after string) FieldChange {
	return FieldChange{Changed: Scalar(before, after), Before: before, After: after}
}

func orderedEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
