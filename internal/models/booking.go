package models

import "time"

type Booking struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:16;uniqueIndex;not null" json:"reference"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	OpportunityID uint        `gorm:"index;not null" json:"opportunity_id"`
	Opportunity   Opportunity `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"opportunity"`

	TimeSlotID *uint     `gorm:"index" json:"time_slot_id"`
	TimeSlot   *TimeSlot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"time_slot,omitempty"`

	BookingTime time.Time `gorm:"not null" json:"booking_time"`
	Hours       int       `json:"hours"`
	Status      string    `gorm:"size:20;not null;index" json:"status"`

	Notes            string `gorm:"type:text" json:"notes"`
	EmergencyContact string `gorm:"size:100" json:"emergency_contact"`
	EmergencyPhone   string `gorm:"size:20" json:"emergency_phone"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
