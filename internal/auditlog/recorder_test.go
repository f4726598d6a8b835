package auditlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
	"inventory-backend/internal/testutil"
)

func TestUserContext(t *testing.T) {
	assert.Equal(t, DefaultUser, UserFrom(context.Background()))
	assert.Equal(t, DefaultUser, UserFrom(WithUser(context.Background(), "")))
	assert.Equal(t, "maya", UserFrom(WithUser(context.Background(), "maya")))
}

func TestRecorder_Record(t *testing.T) {
	s := store.NewGormStore(testutil.NewSQLiteDB(t))
	rec := NewRecorder(s, 2, zap.NewNop())
	ctx := WithUser(context.Background(), "maya")

	rec.Record(ctx, "pricing", "Preview committed", "3 units", model.SeveritySuccess)
	rec.Record(ctx, "import", "Import failed", "2 errors", model.SeverityError)
	rec.Record(ctx, "status", "Status changed", "A-101 -> Sold", model.SeverityInfo)

	entries, err := s.ListLogs(context.Background(), store.LogFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "status", entries[0].Module)
	assert.Equal(t, "maya", entries[0].User)
	assert.Equal(t, "import", entries[1].Module)
}

type failingLogStore struct{ calls int }

func (f *failingLogStore) AppendLog(context.Context, *model.LogEntry, int) error {
	f.calls++
	return errors.New("disk full")
}
func (f *failingLogStore) ListLogs(context.Context, store.LogFilter) ([]model.LogEntry, error) {
	return nil, nil
}
func (f *failingLogStore) ClearLogs(context.Context) error { return nil }

func TestRecorder_SwallowsStoreErrors(t *testing.T) {
	fs := &failingLogStore{}
	rec := NewRecorder(fs, 10, zap.NewNop())
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), "pricing", "x", "", model.SeverityInfo)
	})
	assert.Equal(t, 1, fs.calls)

	var nilRec *Recorder
	assert.NotPanics(t, func() {
		nilRec.Record(context.Background(), "pricing", "x", "", model.SeverityInfo)
	})
}
