package model

import "time"

// Role constants. Only admin and super-admin may moderate; only
// super-admin may manage roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"_id"`
	Username     string    `gorm:"not null;uniqueIndex;size:255" json:"username"`
	Email        string    `gorm:"not null;uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	Role         string    `gorm:"not null;default:'user';size:20" json:"role"`
	IsBanned     bool      `gorm:"default:false" json:"is_banned"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// IsStaff reports whether the user holds a moderation-capable role.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
