package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inventory-backend/config"
	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/blob"
	"inventory-backend/internal/events"
	"inventory-backend/internal/importer"
	"inventory-backend/internal/metrics"
	"inventory-backend/internal/model"
	"inventory-backend/internal/pricing"
	"inventory-backend/internal/store"
	"inventory-backend/internal/testutil"
	"inventory-backend/internal/workflow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  store.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := store.NewGormStore(testutil.NewSQLiteDB(t))
	log := zap.NewNop()
	audit := auditlog.NewRecorder(s, 1000, log)

	h := NewHandler(Deps{
		Store:    s,
		Pricing:  pricing.NewEngine(s, time.Minute, audit, log),
		Workflow: workflow.NewService(s, nil, audit, log),
		Importer: importer.NewService(s, time.Minute, audit, log),
		Events:   events.NewService(s, audit, log),
		Audit:    audit,
		Blobs:    blob.NewMemory(),
		Metrics:  metrics.New(),
		Log:      log,
	})
	cfg := config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60}
	return &testServer{router: NewRouter(h, cfg), store: s}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, method, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	part, err := mpw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mpw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func unit(number string, price, area float64) map[string]any {
	return map[string]any{
		"unitNumber": number,
		"unitType":   "Apartment",
		"totalArea":  area,
		"price":      price,
	}
}

func (ts *testServer) createUnit(t *testing.T, body map[string]any) model.Property {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/properties", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[model.Property](t, w)
}

func TestProperties_CRUD(t *testing.T) {
	ts := newTestServer(t)

	p := ts.createUnit(t, unit("A-101", 1000000, 1000))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.StatusAvailable, p.Status)
	assert.Equal(t, 1000.0, p.PricePerSqft)

	w := ts.do(t, http.MethodGet, "/api/properties/"+p.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	update := unit("A-101", 1200000, 1000)
	update["view"] = "Sea"
	w = ts.do(t, http.MethodPut, "/api/properties/"+p.ID, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1200.0, decode[model.Property](t, w).PricePerSqft)

	w = ts.do(t, http.MethodGet, "/api/properties?search=a-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Property](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, 1200000.0, list[0].Price)

	w = ts.do(t, http.MethodDelete, "/api/properties/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/properties/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProperties_Validation(t *testing.T) {
	ts := newTestServer(t)

	testCases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing unit number", unit("", 100, 10), "unitNumber"},
		{"zero area", unit("A-1", 100, 0), "totalArea"},
		{"negative price", unit("A-1", -1, 10), "price"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/properties", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.field, decode[map[string]any](t, w)["field"])
		})
	}

	sold := unit("A-2", 100, 10)
	sold["status"] = "Sold"
	w := ts.do(t, http.MethodPost, "/api/properties", sold)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "clientName")

	w = ts.do(t, http.MethodGet, "/api/properties?status=Leased", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProperties_BulkDelete(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createUnit(t, unit("A-1", 100, 10))
	b := ts.createUnit(t, unit("A-2", 100, 10))
	ts.createUnit(t, unit("A-3", 100, 10))

	w := ts.do(t, http.MethodPost, "/api/properties/bulk-delete", map[string]any{"propertyIds": []string{a.ID, b.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["deleted"])

	w = ts.do(t, http.MethodPost, "/api/properties/bulk-delete", map[string]any{"propertyIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatus_ClientInfoGate(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createUnit(t, unit("B-1", 500000, 800))

	w := ts.do(t, http.MethodPost, "/api/properties/"+p.ID+"/status", map[string]any{"status": "Reserved"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[map[string]any](t, w)
	require.Len(t, body["blocked"], 1)

	info := map[string]any{"agencyName": "Coastal Realty", "agentName": "Sam Lee", "clientName": "Dana Ortiz"}
	w = ts.do(t, http.MethodPost, "/api/properties/"+p.ID+"/status", map[string]any{"status": "Sold", "clientInfo": info})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[model.Property](t, w)
	assert.Equal(t, model.StatusSold, got.Status)
	require.NotNil(t, got.ClientInfo)
	assert.NotNil(t, got.SoldDate)

	w = ts.do(t, http.MethodPost, "/api/properties/"+p.ID+"/status", map[string]any{"status": "Available"})
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[model.Property](t, w)
	assert.Nil(t, got.ClientInfo)
	assert.Nil(t, got.SoldDate)
}

func TestStatus_Bulk(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createUnit(t, unit("C-1", 100, 10))
	b := ts.createUnit(t, unit("C-2", 100, 10))
	info := map[string]any{"agencyName": "Coastal Realty", "agentName": "Sam Lee", "clientName": "Dana Ortiz"}

	w := ts.do(t, http.MethodPost, "/api/properties/bulk-status", map[string]any{
		"propertyIds":      []string{a.ID, b.ID},
		"status":           "Under Offer",
		"sharedClientInfo": info,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, "shared info is only used when applied")
	assert.Len(t, decode[map[string]any](t, w)["blocked"], 2)

	w = ts.do(t, http.MethodPost, "/api/properties/bulk-status", map[string]any{
		"propertyIds":           []string{a.ID, b.ID},
		"status":                "Under Offer",
		"sharedClientInfo":      info,
		"applySharedClientInfo": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, p := range decode[[]model.Property](t, w) {
		assert.Equal(t, model.StatusUnderOffer, p.Status)
	}
}

func TestPricing_PreviewCommit(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createUnit(t, unit("D-1", 1000000, 1000))

	w := ts.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"rule": "percentage", "value": 10})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	preview := decode[pricing.Preview](t, w)
	require.Len(t, preview.Changes, 1)
	assert.InDelta(t, 1100000, preview.Changes[0].NewPrice, 0.001)

	w = ts.do(t, http.MethodGet, "/api/properties/"+p.ID, nil)
	assert.Equal(t, 1000000.0, decode[model.Property](t, w).Price, "a preview persists nothing")

	w = ts.do(t, http.MethodPost, "/api/pricing/previews/"+preview.ID+"/commit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[pricing.CommitResult](t, w).Updated)

	w = ts.do(t, http.MethodGet, "/api/properties/"+p.ID, nil)
	assert.InDelta(t, 1100000, decode[model.Property](t, w).Price, 0.001)

	w = ts.do(t, http.MethodPost, "/api/pricing/previews/"+preview.ID+"/commit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"rule": "percentage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPricing_Discard(t *testing.T) {
	ts := newTestServer(t)
	ts.createUnit(t, unit("D-2", 100, 10))

	w := ts.do(t, http.MethodPost, "/api/pricing/preview", map[string]any{"rule": "area_rate", "value": "20"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	preview := decode[pricing.Preview](t, w)

	w = ts.do(t, http.MethodDelete, "/api/pricing/previews/"+preview.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/pricing/previews/"+preview.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

const importCSV = `Unit,Project,Type,Price,Area,Status,Agency,Agent,Client,Client Email
E-1,Harbour View,Apartment,"900,000",900,Available,,,,
E-2,Harbour View,Apartment,1100000,1000,Reserved,Coastal Realty,Sam Lee,Dana Ortiz,dana@example.com
`

func TestImport_UploadAndCommit(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/import/fields", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]importer.Field](t, w), len(importer.Fields))

	w = ts.upload(t, http.MethodPost, "/api/import/upload", "units.csv", []byte(importCSV))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	up := decode[uploadResponse](t, w)
	assert.Equal(t, 2, up.Rows)
	assert.Empty(t, up.MissingRequired)
	assert.Equal(t, "Unit", up.SuggestedMapping[importer.FieldUnitNumber])
	require.Len(t, up.Preview, 2)

	w = ts.do(t, http.MethodPost, "/api/import/commit", map[string]any{"token": up.Token, "mapping": up.SuggestedMapping})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[importer.Result](t, w).Imported)

	w = ts.do(t, http.MethodGet, "/api/properties?status=Reserved", nil)
	list := decode[[]model.Property](t, w)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ClientInfo)
	assert.Equal(t, "Dana Ortiz", list[0].ClientInfo.ClientName)

	w = ts.do(t, http.MethodPost, "/api/import/commit", map[string]any{"token": up.Token, "mapping": up.SuggestedMapping})
	assert.Equal(t, http.StatusNotFound, w.Code, "a committed upload is released")
}

func TestImport_InvalidRowsRejectWholeFile(t *testing.T) {
	ts := newTestServer(t)
	csv := "Unit,Project,Type,Price,Area\nF-1,Harbour View,Apartment,100,10\nF-2,Harbour View,Apartment,abc,0\n"

	w := ts.upload(t, http.MethodPost, "/api/import/upload", "units.csv", []byte(csv))
	require.Equal(t, http.StatusCreated, w.Code)
	up := decode[uploadResponse](t, w)

	w = ts.do(t, http.MethodPost, "/api/import/commit", map[string]any{"token": up.Token, "mapping": up.SuggestedMapping})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode[struct {
		Report importer.Report `json:"report"`
	}](t, w)
	assert.False(t, body.Report.Valid)
	assert.GreaterOrEqual(t, len(body.Report.Issues), 2)

	w = ts.do(t, http.MethodGet, "/api/properties", nil)
	assert.Empty(t, decode[[]model.Property](t, w))

	w = ts.upload(t, http.MethodPost, "/api/import/upload", "units.pdf", []byte("%PDF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createUnit(t, unit("G-1", 100, 10))
	ts.createUnit(t, unit("G-2", 200, 20))

	w := ts.do(t, http.MethodPost, "/api/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "properties_export.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3)

	w = ts.do(t, http.MethodPost, "/api/export?format=xlsx", map[string]any{"propertyIds": []string{a.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	table, err := importer.ParseXLSX(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "G-1", table.Rows[0].Value("Unit Number"))

	w = ts.do(t, http.MethodPost, "/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjects_DeleteBlockedThenCascade(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/developers", map[string]any{"name": "Skyline Group"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	dev := decode[model.Developer](t, w)

	w = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Harbour View", "developerId": dev.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	project := decode[model.Project](t, w)
	assert.Equal(t, "Skyline Group", project.DeveloperName)

	w = ts.do(t, http.MethodPost, "/api/projects", map[string]any{"name": "Harbour View"})
	assert.Equal(t, http.StatusConflict, w.Code)

	body := unit("H-1", 100, 10)
	body["projectId"] = project.ID
	p := ts.createUnit(t, body)
	assert.Equal(t, "Harbour View", p.ProjectName)

	w = ts.do(t, http.MethodDelete, "/api/developers/"+dev.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = ts.do(t, http.MethodDelete, "/api/projects/"+project.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/projects/"+project.ID+"?cascade=true", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/properties/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/developers/"+dev.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEvents_RegistrationAndCheckIn(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/events", map[string]any{
		"title": "Launch", "date": "2026-11-02", "time": "18:30", "capacity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	event := decode[model.Event](t, w)

	w = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/registrations", map[string]any{"name": "Ana", "email": "ana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[model.Registration](t, w)

	w = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/registrations", map[string]any{"name": "Ben", "email": "ben@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code, "capacity reached")

	w = ts.do(t, http.MethodGet, "/api/events/"+event.ID+"/registrations/"+reg.ID+"/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	code, err := json.Marshal(events.Payload{EventID: event.ID, RegistrationID: reg.ID})
	require.NoError(t, err)

	w = ts.do(t, http.MethodPost, "/api/events/other/checkin", map[string]any{"code": string(code)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/checkin", map[string]any{"code": string(code)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[model.Registration](t, w).Attended)

	w = ts.do(t, http.MethodPost, "/api/events/"+event.ID+"/checkin", map[string]any{"code": string(code)})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/api/events/"+event.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{reg.ID}, decode[map[string]any](t, w)["attendeeIds"])
}

func TestSettings(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preferredCurrency":"USD","preferredAreaUnit":"sqft"}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/api/settings", map[string]any{"preferredCurrency": "aed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preferredCurrency":"AED","preferredAreaUnit":"sqft"}`, w.Body.String())

	w = ts.do(t, http.MethodPut, "/api/settings", map[string]any{"preferredAreaUnit": "acres"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = ts.do(t, http.MethodPut, "/api/settings", map[string]any{"preferredCurrency": "dirham"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogs_RecordActingUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/properties", unit("L-1", 100, 10), "X-User", "maya")
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/logs?module=properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]model.LogEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "maya", entries[0].User)
	assert.Equal(t, "Unit added", entries[0].Action)

	w = ts.do(t, http.MethodDelete, "/api/logs", nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/api/logs?module=properties", nil)
	assert.Empty(t, decode[[]model.LogEntry](t, w))
}

func TestDashboard_CacheFlushedByWrites(t *testing.T) {
	ts := newTestServer(t)
	ts.createUnit(t, unit("M-1", 100, 10))

	w := ts.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[struct {
		Summary store.InventorySummary `json:"summary"`
	}](t, w)
	assert.EqualValues(t, 1, first.Summary.TotalUnits)

	ts.createUnit(t, unit("M-2", 300, 10))

	w = ts.do(t, http.MethodGet, "/api/dashboard", nil)
	second := decode[struct {
		Summary store.InventorySummary `json:"summary"`
	}](t, w)
	assert.EqualValues(t, 2, second.Summary.TotalUnits)
	assert.Equal(t, 400.0, second.Summary.AvailableValue)
}

func TestFloorPlan_UploadAndServe(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createUnit(t, unit("N-1", 100, 10))

	w := ts.upload(t, http.MethodPut, "/api/properties/"+p.ID+"/floor-plan", "plan.png", []byte("\x89PNG fake"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[model.Property](t, w)
	require.NotNil(t, got.FloorPlan)
	assert.True(t, strings.HasPrefix(*got.FloorPlan, "floor-plans/"+p.ID+"/"))

	w = ts.do(t, http.MethodGet, "/api/blobs/"+*got.FloorPlan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = ts.do(t, http.MethodGet, "/api/blobs/floor-plans/missing.png", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.upload(t, http.MethodPut, "/api/properties/missing/floor-plan", "plan.png", []byte("x"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFloorPlan_ActiveContentIsDownloaded(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createUnit(t, unit("N-2", 100, 10))

	for _, name := range []string{"plan.html", "plan.svg"} {
		w := ts.upload(t, http.MethodPut, "/api/properties/"+p.ID+"/floor-plan", name, []byte("<script>alert(1)</script>"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := decode[model.Property](t, w)
		require.NotNil(t, got.FloorPlan)

		w = ts.do(t, http.MethodGet, "/api/blobs/"+*got.FloorPlan, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), name)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"), name)
	}
}

func TestSubscriptions_WatchList(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createUnit(t, unit("P-1", 100, 10))
	endpoint := "https://push.example.com/send/abc%3D"

	w := ts.do(t, http.MethodPut, "/api/subscriptions", map[string]any{
		"endpoint": endpoint, "p256dh": "key", "auth": "secret",
		"watched_properties": []string{p.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"watched_properties":["`+p.ID+`"]}`, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/api/subscriptions", map[string]any{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/properties", nil)

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `inventory_http_requests_total{code="200",method="GET",route="/api/properties"} 1`)
}
