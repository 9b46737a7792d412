package models

import "time"

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID *uint         `json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"organization,omitempty"`

	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Username     string `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:120" json:"full_name"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         string `gorm:"size:20;not null" json:"role"`
	IsActive     bool   `json:"is_active"`

	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
