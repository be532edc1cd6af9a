package model

import "time"

type Family struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"_id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Family) TableName() string {
	return "families"
}

type Attribute struct {
	ID        string    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"_id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Attribute) TableName() string {
	return "attributes"
}
