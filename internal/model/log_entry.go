package model

import "time"

// Severity of an audit log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// LogEntry is one line of the system audit log.
type LogEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	User      string    `gorm:"size:128;not null" json:"user"`
	Action    string    `gorm:"size:128;not null" json:"action"`
	Module    string    `gorm:"size:64;not null;index" json:"module"`
	Details   string    `json:"details"`
	Severity  Severity  `gorm:"size:16;not null" json:"severity"`
}
