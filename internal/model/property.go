package model

import (
	"strings"
	"time"
)

// Status is the sales status of a unit.
type Status string

const (
	StatusAvailable     Status = "Available"
	StatusReserved      Status = "Reserved"
	StatusUnderOffer    Status = "Under Offer"
	StatusSold          Status = "Sold"
	StatusDeveloperHold Status = "Developer Hold"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusAvailable, StatusReserved, StatusUnderOffer, StatusSold, StatusDeveloperHold}

// ParseStatus matches s case-insensitively against the known statuses.
// "Pending" is accepted as an alias of Developer Hold.
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if norm == "pending" {
		return StatusDeveloperHold, true
	}
	for _, st := range Statuses {
		if strings.ToLower(string(st)) == norm {
			return st, true
		}
	}
	return "", false
}

// RequiresClientInfo reports whether a unit in this status must carry client information.
func (s Status) RequiresClientInfo() bool {
	switch s {
	case StatusReserved, StatusUnderOffer, StatusSold:
		return true
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// ClientInfo is the agency, agent and client data attached to a unit that is off the market.
type ClientInfo struct {
	AgencyName  string    `json:"agencyName"`
	AgentName   string    `json:"agentName"`
	AgentEmail  string    `json:"agentEmail,omitempty"`
	AgentPhone  string    `json:"agentPhone,omitempty"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail,omitempty"`
	ClientPhone string    `json:"clientPhone,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	AttachedAt  time.Time `json:"attachedAt"`
}

// MissingFields returns the names of the required fields that are blank.
func (c *ClientInfo) MissingFields() []string {
	if c == nil {
		return []string{"agencyName", "agentName", "clientName"}
	}
	var missing []string
	if strings.TrimSpace(c.AgencyName) == "" {
		missing = append(missing, "agencyName")
	}
	if strings.TrimSpace(c.AgentName) == "" {
		missing = append(missing, "agentName")
	}
	if strings.TrimSpace(c.ClientName) == "" {
		missing = append(missing, "clientName")
	}
	return missing
}

// Property is a single unit in the inventory.
type Property struct {
	ID                   string      `gorm:"primaryKey;size:36" json:"id"`
	UnitNumber           string      `gorm:"size:64;not null;index" json:"unitNumber"`
	ProjectID            *string     `gorm:"size:36;index" json:"projectId,omitempty"`
	ProjectName          string      `gorm:"size:256;index" json:"projectName"`
	DeveloperName        string      `gorm:"size:256" json:"developerName"`
	BuildingName         string      `gorm:"size:128" json:"buildingName"`
	Phase                string      `gorm:"size:64" json:"phase"`
	FloorNumber          *int        `json:"floorNumber,omitempty"`
	UnitType             string      `gorm:"size:64;not null" json:"unitType"`
	Bedrooms             *int        `json:"bedrooms,omitempty"`
	Bathrooms            *int        `json:"bathrooms,omitempty"`
	InternalArea         float64     `json:"internalArea"`
	ExternalArea         float64     `json:"externalArea"`
	TotalArea            float64     `gorm:"not null" json:"totalArea"`
	Price                float64     `gorm:"not null" json:"price"`
	PricePerSqft         float64     `json:"pricePerSqft"`
	PricePerInternalSqft float64     `json:"pricePerInternalSqft"`
	Status               Status      `gorm:"size:32;not null;index" json:"status"`
	View                 *string     `gorm:"size:128" json:"view,omitempty"`
	FloorPlan            *string     `gorm:"size:512" json:"floorPlan,omitempty"`
	ClientInfo           *ClientInfo `gorm:"serializer:json" json:"clientInfo"`
	SoldDate             *time.Time  `json:"soldDate,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// SetPrice replaces the price and recomputes the derived price-per-area fields.
func (p *Property) SetPrice(price float64) {
	p.Price = price
	p.RecomputeDerived()
}

// RecomputeDerived refreshes the price-per-area fields from price and areas.
func (p *Property) RecomputeDerived() {
	p.PricePerSqft = 0
	if p.TotalArea > 0 {
		p.PricePerSqft = p.Price / p.TotalArea
	}
	p.PricePerInternalSqft = 0
	if p.InternalArea > 0 {
		p.PricePerInternalSqft = p.Price / p.InternalArea
	}
}
