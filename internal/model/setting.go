package model

import "time"

// Known setting keys.
const (
	SettingPreferredCurrency = "preferredCurrency"
	SettingPreferredAreaUnit = "preferredAreaUnit"
)

// Setting is a single user preference.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"size:256;not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
