package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// History action constants
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionRollback = "rollback"
)

// History is the catalog audit log. Before holds a full snapshot of the
// plant as it was prior to the action (absent for creates), which is what
// rollback restores.
type History struct {
	ID             int64          `gorm:"primaryKey;autoIncrement" json:"_id"`
	Action         string         `gorm:"not null;size:20;index" json:"action"`
	PlantID        *string        `gorm:"type:uuid;index" json:"plant,omitempty"`
	ScientificName string         `gorm:"size:255" json:"scientific_name"`
	Before         datatypes.JSON `json:"before,omitempty"`
	UpdatedBy      string         `gorm:"not null;size:255" json:"updatedBy"`
	RolledBack     bool           `gorm:"default:false" json:"undone"`
	CreatedAt      time.Time      `gorm:"index:idx_histories_created,sort:desc" json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (History) TableName() string {
	return "histories"
}

// CanUndo reports whether the entry is still rollback-eligible. Rollback
// rows themselves are not undoable, and a row is consumed by one rollback.
func (h *History) CanUndo() bool {
	return h.Action != ActionRollback && !h.RolledBack
}

// Snapshot decodes the before-image. Returns nil when the entry carries
// none (creates and rollbacks of creates).
func (h *History) Snapshot() (*Plant, error) {
	if len(h.Before) == 0 {
		return nil, nil
	}
	var p Plant
	if err := json.Unmarshal(h.Before, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeSnapshot stores a full before-image of the plant on the entry.
func (h *History) EncodeSnapshot(p *Plant) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	h.Before = datatypes.JSON(raw)
	return nil
}
