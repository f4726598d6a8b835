package model

import "time"

// Project groups units built by one developer.
type Project struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	Name          string        `gorm:"uniqueIndex;size:256;not null" json:"name"`
	DeveloperID   *string       `gorm:"size:36;index" json:"developerId,omitempty"`
	DeveloperName string        `gorm:"size:256" json:"developerName"`
	Location      string        `gorm:"size:256" json:"location"`
	Description   string        `json:"description"`
	TotalUnits    int           `json:"totalUnits"`
	Phases        []Phase       `gorm:"serializer:json" json:"phases"`
	PaymentPlans  []PaymentPlan `gorm:"serializer:json" json:"paymentPlans"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Phase is a construction phase of a project.
type Phase struct {
	Name           string `json:"name"`
	CompletionDate string `json:"completionDate,omitempty"`
}

// PaymentPlan is an installment schedule offered on a project.
type PaymentPlan struct {
	Name       string      `json:"name"`
	Milestones []Milestone `json:"milestones"`
}

// Milestone is one installment of a payment plan.
type Milestone struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}
