package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/florapedia/api/internal/model"
)

// Binomial (optionally trinomial) nomenclature: capitalized genus followed
// by lower-case epithets.
var scientificNameRe = regexp.MustCompile(`^[A-Z][a-zë-]+(?: ×?[a-zë.-]+){1,3}$`)

// ValidScientificName reports whether a name conforms to binomial
// nomenclature as the catalog accepts it.
func ValidScientificName(name string) bool {
	return scientificNameRe.MatchString(strings.TrimSpace(name))
}

// ValidatePlantPayload checks a proposed plant record and returns the list
// of problems found. An empty list means the payload is acceptable.
func ValidatePlantPayload(p model.ContributionPlant) []string {
	var problems []string

	name := strings.TrimSpace(p.ScientificName)
	if name == "" {
		problems = append(problems, "scientific_name is required")
	} else if !scientificNameRe.MatchString(name) {
		problems = append(problems, fmt.Sprintf("scientific_name %q is not valid binomial nomenclature", name))
	}

	if strings.TrimSpace(p.Family) == "" {
		problems = append(problems, "family is required")
	}

	for i, section := range p.SpeciesDescription {
		if strings.TrimSpace(section.Section) == "" {
			problems = append(problems, fmt.Sprintf("species_description[%d]: section name is required", i))
		}
		for j, detail := range section.Details {
			if strings.TrimSpace(detail.Label) == "" {
				problems = append(problems, fmt.Sprintf("species_description[%d].details[%d]: label is required", i, j))
			}
		}
	}

	return problems
}

// ValidateContribution checks the proposal envelope on top of the payload:
// an update must reference the record it replaces, a create must not.
func ValidateContribution(contributionType string, plantRef *string, p model.ContributionPlant) []string {
	var problems []string

	switch contributionType {
	case model.ContributionTypeCreate:
		if plantRef != nil {
			problems = append(problems, "a create contribution must not carry a plant_ref")
		}
	case model.ContributionTypeUpdate:
		if plantRef == nil || strings.TrimSpace(*plantRef) == "" {
			problems = append(problems, "an update contribution requires a plant_ref")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown contribution type %q", contributionType))
	}

	return append(problems, ValidatePlantPayload(p)...)
}
