// Package auditlog records user-visible actions in the capped system log.
package auditlog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

// DefaultUser is recorded when the request carries no user.
const DefaultUser = "system"

type userKey struct{}

// WithUser attaches the acting user to ctx.
func WithUser(ctx context.Context, user string) context.Context {
	if user == "" {
		user = DefaultUser
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the acting user stored in ctx.
func UserFrom(ctx context.Context) string {
	if u, ok := ctx.Value(userKey{}).(string); ok && u != "" {
		return u
	}
	return DefaultUser
}

// Recorder appends entries to the log store. A nil *Recorder discards everything.
type Recorder struct {
	store      store.LogStore
	maxEntries int
	log        *zap.Logger
	now        func() time.Time
}

// NewRecorder creates a recorder that keeps at most maxEntries entries.
func NewRecorder(s store.LogStore, maxEntries int, log *zap.Logger) *Recorder {
	return &Recorder{store: s, maxEntries: maxEntries, log: log, now: time.Now}
}

// Record writes one entry. Failures are logged and swallowed: the audited action
// has already happened and must not be reported as failed.
func (r *Recorder) Record(ctx context.Context, module, action, details string, severity model.Severity) {
	if r == nil {
		return
	}
	entry := &model.LogEntry{
		Timestamp: r.now().UTC(),
		User:      UserFrom(ctx),
		Action:    action,
		Module:    module,
		Details:   details,
		Severity:  severity,
	}
	if err := r.store.AppendLog(ctx, entry, r.maxEntries); err != nil {
		r.log.Warn("failed to write audit entry",
			zap.String("module", module),
			zap.String("action", action),
			zap.Error(err))
		return
	}
	r.log.Debug("audit",
		zap.String("user", entry.User),
		zap.String("module", module),
		zap.String("action", action),
		zap.String("severity", string(severity)))
}
