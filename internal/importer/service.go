package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/model"
)

const auditModule = "import"

// ErrUploadNotFound is returned for unknown or expired upload tokens.
var ErrUploadNotFound = errors.New("upload not found or expired")

// Store is the part of the repository an import writes to.
type Store interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProperties(ctx context.Context, props []model.Property) error
}

// Result describes a committed import.
type Result struct {
	Imported int     `json:"imported"`
	Report   *Report `json:"report"`
}

// Service validates and commits parsed tables. Parsed uploads wait in a
// holding area until the user confirms a mapping.
type Service struct {
	store   Store
	uploads *cache.Cache
	audit   *auditlog.Recorder
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates an import service whose pending uploads expire after uploadTTL.
func NewService(s Store, uploadTTL time.Duration, audit *auditlog.Recorder, log *zap.Logger) *Service {
	return &Service{
		store:   s,
		uploads: cache.New(uploadTTL, 2*uploadTTL),
		audit:   audit,
		log:     log,
		now:     time.Now,
	}
}

// Hold parks a parsed table and returns its token.
func (s *Service) Hold(t *Table) string {
	token := uuid.NewString()
	s.uploads.Set(token, t, cache.DefaultExpiration)
	return token
}

// Held returns a parked table.
func (s *Service) Held(token string) (*Table, error) {
	v, ok := s.uploads.Get(token)
	if !ok {
		return nil, ErrUploadNotFound
	}
	return v.(*Table), nil
}

// Import validates t against m and inserts every row or none. When
// validation fails the returned error is the *Report.
func (s *Service) Import(ctx context.Context, t *Table, m Mapping) (*Result, error) {
	rep := Validate(t, m)
	if !rep.Valid {
		s.log.Info("import rejected",
			zap.String("file", t.Filename),
			zap.Int("issues", len(rep.Issues)))
		s.audit.Record(ctx, auditModule, "Import rejected",
			fmt.Sprintf("%s: %d problem(s)", t.Filename, len(rep.Issues)), model.SeverityWarning)
		return &Result{Report: rep}, rep
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	projectIDs := make(map[string]string, len(projects))
	for _, p := range projects {
		projectIDs[strings.ToLower(p.Name)] = p.ID
	}

	props := Transform(t, m, projectIDs)
	now := s.now().UTC()
	for i := range props {
		if props[i].ClientInfo != nil {
			props[i].ClientInfo.AttachedAt = now
		}
		if props[i].Status == model.StatusSold {
			d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			props[i].SoldDate = &d
		}
	}

	if err := s.store.CreateProperties(ctx, props); err != nil {
		s.audit.Record(ctx, auditModule, "Import failed", fmt.Sprintf("%s: %v", t.Filename, err), model.SeverityError)
		return nil, fmt.Errorf("failed to import %d units: %w", len(props), err)
	}

	s.log.Info("import committed", zap.String("file", t.Filename), zap.Int("units", len(props)))
	s.audit.Record(ctx, auditModule, "Units imported",
		fmt.Sprintf("%d units from %s", len(props), t.Filename), model.SeveritySuccess)
	return &Result{Imported: len(props), Report: rep}, nil
}

// ImportHeld imports a parked upload and releases its token on success.
func (s *Service) ImportHeld(ctx context.Context, token string, m Mapping) (*Result, error) {
	t, err := s.Held(token)
	if err != nil {
		return nil, err
	}
	res, err := s.Import(ctx, t, m)
	if err != nil {
		return res, err
	}
	s.uploads.Delete(token)
	return res, nil
}
