package models

import "time"

type Organization struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:200;not null" json:"name"`
	Slug         string `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	Website      string `gorm:"size:255" json:"website"`
	ContactEmail string `gorm:"size:120" json:"contact_email"`
	Phone        string `gorm:"size:20" json:"phone"`

	Address string `gorm:"size:200" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:2" json:"state"`
	ZipCode string `gorm:"size:10" json:"zip_code"`

	Timezone   string `gorm:"size:64" json:"timezone"`
	IsVerified bool   `json:"is_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
