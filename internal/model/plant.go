package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

// SpeciesDetail is a single label/content row inside a description section.
type SpeciesDetail struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// SpeciesSection groups detail rows under a named aspect of a species
// (e.g. "Care", "Habitat").
type SpeciesSection struct {
	Section string          `json:"section"`
	Details []SpeciesDetail `json:"details"`
}

// SpeciesSections is stored as a JSONB column on plants.
type SpeciesSections []SpeciesSection

// Value implements driver.Valuer for JSONB serialization
func (s SpeciesSections) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]SpeciesSection{})
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB deserialization
func (s *SpeciesSections) Scan(value interface{}) error {
	if value == nil {
		*s = []SpeciesSection{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal SpeciesSections: not a byte slice")
	}

	return json.Unmarshal(bytes, s)
}

type Plant struct {
	ID                 string          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"_id"`
	ScientificName     string          `gorm:"uniqueIndex;not null;size:255" json:"scientific_name"`
	CommonNames        pq.StringArray  `gorm:"type:text[]" json:"common_name"`
	Description        string          `gorm:"type:text" json:"description,omitempty"`
	FamilyID           string          `gorm:"type:uuid;not null;index" json:"-"`
	Family             Family          `gorm:"foreignKey:FamilyID" json:"family"`
	Attributes         []Attribute     `gorm:"many2many:plant_attributes" json:"attributes"`
	Images             pq.StringArray  `gorm:"type:text[]" json:"images"`
	SpeciesDescription SpeciesSections `gorm:"type:jsonb;not null;default:'[]'" json:"species_description"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (Plant) TableName() string {
	return "plants"
}

// PlantListItem is the compact row shape for the species list view.
type PlantListItem struct {
	ID             string    `json:"_id"`
	ScientificName string    `json:"scientific_name"`
	Family         string    `json:"family"`
	Image          string    `json:"image"`
	CommonNames    []string  `json:"common_name"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ListItem flattens a plant for list responses: family by name, first image only.
func (p *Plant) ListItem() PlantListItem {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return PlantListItem{
		ID:             p.ID,
		ScientificName: p.ScientificName,
		Family:         p.Family.Name,
		Image:          image,
		CommonNames:    p.CommonNames,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
