package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Contribution type constants
const (
	ContributionTypeCreate = "create"
	ContributionTypeUpdate = "update"
)

// Contribution status constants. Pending is the only initial state;
// approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ContributionPlant is the proposed record carried inside a contribution.
// Family and attributes are referenced by name: the submitter proposes
// names, the catalog resolves them to entities on approval.
type ContributionPlant struct {
	ScientificName     string           `json:"scientific_name"`
	CommonNames        []string         `json:"common_name"`
	Description        string           `json:"description"`
	Family             string           `json:"family"`
	Attributes         []string         `json:"attributes"`
	Images             []string         `json:"images"`
	SpeciesDescription []SpeciesSection `json:"species_description"`
}

// ContributionData is the JSONB proposal envelope: the candidate plant
// plus any images uploaded with the submission.
type ContributionData struct {
	Plant     ContributionPlant `json:"plant"`
	NewImages []string          `json:"newImages"`
}

// Value implements driver.Valuer for JSONB serialization
func (d ContributionData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB deserialization
func (d *ContributionData) Scan(value interface{}) error {
	if value == nil {
		*d = ContributionData{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal ContributionData: not a byte slice")
	}

	return json.Unmarshal(bytes, d)
}

type Contribution struct {
	ID            string           `gorm:"type:uuid;primary_key" json:"_id"`
	UserID        int64            `gorm:"not null;index" json:"-"`
	User          User             `gorm:"foreignKey:UserID" json:"c_user"`
	Message       string           `gorm:"type:text" json:"c_message,omitempty"`
	Type          string           `gorm:"not null;size:20;index" json:"type"`
	Status        string           `gorm:"default:'pending';size:20;index" json:"status"`
	PlantRef      *string          `gorm:"type:uuid;index" json:"plant_ref,omitempty"`
	Data          ContributionData `gorm:"type:jsonb;not null" json:"data"`
	ReviewedBy    *int64           `json:"reviewed_by,omitempty"`
	ReviewMessage string           `gorm:"type:text" json:"review_message,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// Pending reports whether the contribution is still actionable.
func (c *Contribution) Pending() bool {
	return c.Status == StatusPending
}
