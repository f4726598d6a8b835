package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
	"inventory-backend/internal/testutil"
)

func newTestEngine(t *testing.T) (*Engine, store.Store) {
	t.Helper()
	s := store.NewGormStore(testutil.NewSQLiteDB(t))
	for _, p := range sampleProperties() {
		p := p
		p.Status = model.StatusAvailable
		p.UnitType = "Apartment"
		p.RecomputeDerived()
		require.NoError(t, s.CreateProperty(context.Background(), &p))
	}
	rec := auditlog.NewRecorder(s, 100, zap.NewNop())
	return NewEngine(s, time.Minute, rec, zap.NewNop()), s
}

func prices(t *testing.T, s store.Store) map[string]float64 {
	t.Helper()
	props, err := s.ListProperties(context.Background(), store.PropertyFilter{})
	require.NoError(t, err)
	out := make(map[string]float64, len(props))
	for _, p := range props {
		out[p.ID] = p.Price
	}
	return out
}

func TestEngine_PreviewDoesNotWrite(t *testing.T) {
	e, s := newTestEngine(t)
	before := prices(t, s)

	preview, err := e.Preview(context.Background(), Request{Rule: RulePercentage, Value: "5"})
	require.NoError(t, err)
	assert.NotEmpty(t, preview.ID)
	assert.Equal(t, 1, e.Pending())
	assert.Equal(t, before, prices(t, s))
}

func TestEngine_CommitPercentage(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	before := prices(t, s)

	preview, err := e.Preview(ctx, Request{Rule: RulePercentage, Value: "5"})
	require.NoError(t, err)
	res, err := e.Commit(ctx, preview.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Updated)

	after := prices(t, s)
	for id, old := range before {
		assert.InDelta(t, old*1.05, after[id], 1e-6, id)
	}

	p, err := s.GetProperty(ctx, "p1")
	require.NoError(t, err)
	assert.InDelta(t, 525.0, p.PricePerSqft, 1e-9)

	// A second preview computed before any further commit leaves committed prices alone.
	_, err = e.Preview(ctx, Request{Rule: RulePercentage, Value: "5"})
	require.NoError(t, err)
	assert.Equal(t, after, prices(t, s))

	logs, err := s.ListLogs(ctx, store.LogFilter{Module: auditModule})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.SeveritySuccess, logs[0].Severity)
}

func TestEngine_CommittedPreviewCannotBeReapplied(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	preview, err := e.Preview(ctx, Request{Rule: RulePercentage, Value: "5"})
	require.NoError(t, err)
	_, err = e.Commit(ctx, preview.ID)
	require.NoError(t, err)
	once := prices(t, s)

	_, err = e.Commit(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
	assert.Equal(t, once, prices(t, s))
}

func TestEngine_CommitInvalidatesOtherPreviews(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	view, err := e.Preview(ctx, Request{Rule: RuleView, Value: "1000"})
	require.NoError(t, err)
	pct, err := e.Preview(ctx, Request{Rule: RulePercentage, Value: "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, e.Pending())

	_, err = e.Commit(ctx, pct.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Pending())

	_, err = e.Commit(ctx, view.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestEngine_StalePreviewRejected(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	preview, err := e.Preview(ctx, Request{Rule: RuleSingleUnit, Value: "1000", UnitNumber: "A-101"})
	require.NoError(t, err)

	p, err := s.GetProperty(ctx, "p1")
	require.NoError(t, err)
	p.SetPrice(480000)
	require.NoError(t, s.UpdateProperty(ctx, p))

	_, err = e.Commit(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrStalePreview)

	p, err = s.GetProperty(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 480000.0, p.Price)

	_, err = e.Get(preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

func TestEngine_RejectedPreviewsLeaveRepositoryUnchanged(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()
	before := prices(t, s)

	_, err := e.Preview(ctx, Request{Rule: RuleSeries, Value: "1000", Pattern: "ZZ"})
	assert.ErrorIs(t, err, ErrNoMatchingUnits)
	_, err = e.Preview(ctx, Request{Rule: RuleBulkDecrease, Value: "1000"})
	assert.ErrorIs(t, err, ErrEmptySelection)

	assert.Equal(t, 0, e.Pending())
	assert.Equal(t, before, prices(t, s))
}

func TestEngine_Discard(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	preview, err := e.Preview(ctx, Request{Rule: RulePercentage, Value: "1"})
	require.NoError(t, err)
	require.NoError(t, e.Discard(preview.ID))
	assert.ErrorIs(t, e.Discard(preview.ID), ErrPreviewNotFound)
	_, err = e.Commit(ctx, preview.ID)
	assert.ErrorIs(t, err, ErrPreviewNotFound)
}

type failingSaveStore struct {
	store.PropertyStore
}

func (f failingSaveStore) SaveProperties(context.Context, []model.Property) error {
	return errors.New("database is locked")
}

func TestEngine_StorageFailureKeepsPreview(t *testing.T) {
	_, s := newTestEngine(t)
	e := NewEngine(failingSaveStore{s}, time.Minute, nil, zap.NewNop())
	ctx := context.Background()
	before := prices(t, s)

	preview, err := e.Preview(ctx, Request{Rule: RulePercentage, Value: "3"})
	require.NoError(t, err)
	_, err = e.Commit(ctx, preview.ID)
	require.Error(t, err)

	assert.Equal(t, before, prices(t, s))
	_, err = e.Get(preview.ID)
	assert.NoError(t, err)
}
