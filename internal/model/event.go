package model

import "time"

// Event is a sales event or launch that prospects register for.
type Event struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Title         string         `gorm:"size:256;not null" json:"title"`
	Description   string         `json:"description"`
	Date          string         `gorm:"size:10" json:"date"` // YYYY-MM-DD
	Time          string         `gorm:"size:5" json:"time"`  // HH:MM
	Location      string         `gorm:"size:256" json:"location"`
	Capacity      int            `json:"capacity"`
	Registrations []Registration `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"registrations"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// AttendeeIDs returns the ids of the registrations that have checked in.
func (e *Event) AttendeeIDs() []string {
	ids := make([]string, 0, len(e.Registrations))
	for _, r := range e.Registrations {
		if r.Attended {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Registration is one attendee's sign-up for an event.
type Registration struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	EventID      string     `gorm:"size:36;not null;index" json:"eventId"`
	Name         string     `gorm:"size:256;not null" json:"name"`
	Email        string     `gorm:"size:256;not null" json:"email"`
	Phone        string     `gorm:"size:64" json:"phone"`
	Company      string     `gorm:"size:256" json:"company"`
	RegisteredAt time.Time  `gorm:"not null" json:"registeredAt"`
	Attended     bool       `gorm:"not null;default:false" json:"attended"`
	AttendedAt   *time.Time `json:"attendedAt,omitempty"`
}
