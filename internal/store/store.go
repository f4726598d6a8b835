package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when a delete is blocked by records that still reference the target.
	ErrInUse = errors.New("record is still referenced")
	// ErrEventFull is returned when a registration would exceed the event capacity.
	ErrEventFull = errors.New("event is at capacity")
	// ErrAlreadyAttended is returned when a registration has already been checked in.
	ErrAlreadyAttended = errors.New("registration already checked in")
)

// PropertyStore is the repository for units.
type PropertyStore interface {
	ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []string) ([]model.Property, error)
	FindPropertyByUnitNumber(ctx context.Context, unitNumber string) (*model.Property, error)
	CreateProperty(ctx context.Context, p *model.Property) error
	CreateProperties(ctx context.Context, props []model.Property) error
	UpdateProperty(ctx context.Context, p *model.Property) error
	SaveProperties(ctx context.Context, props []model.Property) error
	DeleteProperty(ctx context.Context, id string) error
	DeleteProperties(ctx context.Context, ids []string) (int64, error)
	Summary(ctx context.Context) (*InventorySummary, error)
}

// ProjectStore is the repository for projects.
type ProjectStore interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	FindProjectByName(ctx context.Context, name string) (*model.Project, error)
	CreateProject(ctx context.Context, p *model.Project) error
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id string, cascade bool) error
}

// DeveloperStore is the repository for developers.
type DeveloperStore interface {
	ListDevelopers(ctx context.Context) ([]model.Developer, error)
	GetDeveloper(ctx context.Context, id string) (*model.Developer, error)
	CreateDeveloper(ctx context.Context, d *model.Developer) error
	UpdateDeveloper(ctx context.Context, d *model.Developer) error
	DeleteDeveloper(ctx context.Context, id string, cascade bool) error
}

// EventStore is the repository for events and their registrations.
type EventStore interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	CreateEvent(ctx context.Context, e *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	AddRegistration(ctx context.Context, r *model.Registration) error
	GetRegistration(ctx context.Context, eventID, registrationID string) (*model.Registration, error)
	MarkAttended(ctx context.Context, eventID, registrationID string, at time.Time) (*model.Registration, error)
}

// LogStore is the repository for the capped audit log.
type LogStore interface {
	AppendLog(ctx context.Context, entry *model.LogEntry, maxEntries int) error
	ListLogs(ctx context.Context, filter LogFilter) ([]model.LogEntry, error)
	ClearLogs(ctx context.Context) error
}

// SettingStore is the repository for user preferences.
type SettingStore interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	PutSetting(ctx context.Context, key, value string) error
}

// SubscriptionStore is the repository for push subscriptions and their watch lists.
type SubscriptionStore interface {
	PutSubscription(ctx context.Context, sub *model.PushSubscription, propertyIDs []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForProperty(ctx context.Context, propertyID string) ([]model.PushSubscription, error)
}

// Store defines the interface for all database operations.
type Store interface {
	PropertyStore
	ProjectStore
	DeveloperStore
	EventStore
	LogStore
	SettingStore
	SubscriptionStore
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notFound maps gorm's sentinel onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
