// Package events manages sales events, registrations and QR check-in.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

const auditModule = "events"

// DefaultQRSize is the edge length in pixels of generated QR codes.
const DefaultQRSize = 256

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid event input")
	// ErrInvalidPayload is returned when a scanned code is not a check-in payload.
	ErrInvalidPayload = errors.New("unrecognised check-in code")
	// ErrWrongEvent is returned when a code belongs to a different event than the one open.
	ErrWrongEvent = errors.New("code belongs to another event")
	// ErrAlreadyCheckedIn is returned for a registration that has already attended.
	ErrAlreadyCheckedIn = store.ErrAlreadyAttended
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Payload is the content of a registration's QR code.
type Payload struct {
	EventID        string `json:"eventId"`
	RegistrationID string `json:"registrationId"`
}

// Service wraps the event store with validation, QR codes and auditing.
type Service struct {
	store store.EventStore
	audit *auditlog.Recorder
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates an events service.
func NewService(s store.EventStore, audit *auditlog.Recorder, log *zap.Logger) *Service {
	return &Service{store: s, audit: audit, log: log, now: time.Now}
}

func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.store.ListEvents(ctx)
}

func (s *Service) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// CreateEvent validates and stores a new event.
func (s *Service) CreateEvent(ctx context.Context, e *model.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return &ValidationError{Field: "title", Message: "a title is required"}
	}
	if _, err := time.Parse("2006-01-02", e.Date); err != nil {
		return &ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	if e.Time != "" {
		if _, err := time.Parse("15:04", e.Time); err != nil {
			return &ValidationError{Field: "time", Message: "time must be HH:MM"}
		}
	}
	if e.Capacity < 0 {
		return &ValidationError{Field: "capacity", Message: "capacity cannot be negative"}
	}
	e.ID = ""
	e.Registrations = nil
	e.CreatedAt = s.now().UTC()
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return err
	}
	s.audit.Record(ctx, auditModule, "Event created", fmt.Sprintf("%s on %s", e.Title, e.Date), model.SeveritySuccess)
	return nil
}

// DeleteEvent removes an event and its registrations.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, auditModule, "Event deleted", id, model.SeverityWarning)
	return nil
}

// Register signs someone up for an event.
func (s *Service) Register(ctx context.Context, eventID string, r *model.Registration) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if r.Name == "" {
		return &ValidationError{Field: "name", Message: "a name is required"}
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return &ValidationError{Field: "email", Message: "a valid email is required"}
	}
	r.ID = ""
	r.EventID = eventID
	r.RegisteredAt = s.now().UTC()
	r.Attended = false
	r.AttendedAt = nil
	if err := s.store.AddRegistration(ctx, r); err != nil {
		return err
	}
	s.audit.Record(ctx, auditModule, "Registration added", fmt.Sprintf("%s for event %s", r.Name, eventID), model.SeverityInfo)
	return nil
}

// QRCode returns the PNG QR code a registrant presents at the door.
func (s *Service) QRCode(ctx context.Context, eventID, registrationID string, size int) ([]byte, error) {
	reg, err := s.store.GetRegistration(ctx, eventID, registrationID)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	content, err := json.Marshal(Payload{EventID: reg.EventID, RegistrationID: reg.ID})
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(content), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// CheckIn marks the registration named by a scanned payload as attended.
// The payload must belong to openEventID; a registration checks in only once.
func (s *Service) CheckIn(ctx context.Context, openEventID, scanned string) (*model.Registration, error) {
	var p Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(scanned)), &p); err != nil || p.EventID == "" || p.RegistrationID == "" {
		return nil, ErrInvalidPayload
	}
	if p.EventID != openEventID {
		s.log.Info("check-in rejected: wrong event",
			zap.String("open_event", openEventID),
			zap.String("payload_event", p.EventID))
		return nil, ErrWrongEvent
	}

	reg, err := s.store.MarkAttended(ctx, p.EventID, p.RegistrationID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, auditModule, "Attendee checked in", fmt.Sprintf("%s at event %s", reg.Name, reg.EventID), model.SeveritySuccess)
	return reg, nil
}
