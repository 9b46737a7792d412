package models

import "time"

type Opportunity struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint         `gorm:"index;not null" json:"organization_id"`
	Organization   Organization `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"organization"`

	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:50;index" json:"category"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	Hours       int       `json:"hours"`

	// Flat capacity, only meaningful while the opportunity has no time slots.
	SpotsAvailable int `json:"spots_available"`

	Address   string   `gorm:"size:200" json:"address"`
	City      string   `gorm:"size:100" json:"city"`
	State     string   `gorm:"size:2" json:"state"`
	ZipCode   string   `gorm:"size:10" json:"zip_code"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Requirements string `gorm:"type:text" json:"requirements"`
	WhatToBring  string `gorm:"type:text" json:"what_to_bring"`
	ImageURL     string `gorm:"size:255" json:"image_url"`
	IsActive     bool   `gorm:"index" json:"is_active"`
	IsUrgent     bool   `json:"is_urgent"`

	TimeSlots []TimeSlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"time_slots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TimeSlot struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	OpportunityID uint `gorm:"index;not null" json:"opportunity_id"`

	StartTime      string `gorm:"size:20;not null" json:"start_time"`
	EndTime        string `gorm:"size:20" json:"end_time"`
	SpotsAvailable int    `gorm:"not null" json:"spots_available"`
	IsAvailable    bool   `json:"is_available"`
}
