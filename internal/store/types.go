package store

import "inventory-backend/internal/model"

// PropertyFilter narrows ListProperties. Zero values match everything.
type PropertyFilter struct {
	ProjectID string
	Status    model.Status
	Search    string // substring of the unit number
	IDs       []string
}

// LogFilter narrows ListLogs.
type LogFilter struct {
	Module   string
	Severity model.Severity
	Limit    int
}

// InventorySummary aggregates the inventory for the dashboard.
type InventorySummary struct {
	TotalUnits     int64                  `json:"totalUnits"`
	ByStatus       map[model.Status]int64 `json:"byStatus"`
	TotalValue     float64                `json:"totalValue"`
	AvailableValue float64                `json:"availableValue"`
	SoldValue      float64                `json:"soldValue"`
	UnitsByProject map[string]int64       `json:"unitsByProject"`
}
