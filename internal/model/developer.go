package model

import "time"

// Developer is a real-estate developer.
type Developer struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:256;not null" json:"name"`
	ContactPerson string    `gorm:"size:256" json:"contactPerson"`
	Email         string    `gorm:"size:256" json:"email"`
	Phone         string    `gorm:"size:64" json:"phone"`
	Address       string    `json:"address"`
	Website       string    `gorm:"size:512" json:"website"`
	Description   string    `json:"description"`
	Logo          *string   `gorm:"size:512" json:"logo,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
