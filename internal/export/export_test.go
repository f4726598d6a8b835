package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-backend/internal/importer"
	"inventory-backend/internal/model"
)

func fixtures() []model.Property {
	view := "Sea View, corner"
	beds := 2
	return []model.Property{
		{ID: "p1", UnitNumber: "0101", ProjectName: "Marina Heights", UnitType: "Apartment", Price: 1250000.5, TotalArea: 1250, Status: model.StatusAvailable, View: &view, Bedrooms: &beds},
		{ID: "p2", UnitNumber: "A-1203", ProjectName: "Marina \"North\"", UnitType: "Penthouse", Price: 3400000, TotalArea: 3000, Status: model.StatusSold,
			ClientInfo: &model.ClientInfo{AgencyName: "Coastal Realty", AgentName: "Sam Lee", ClientName: "Dana Ortiz", ClientEmail: "dana@example.com"}},
		{ID: "p3", UnitNumber: "B-07", ProjectName: "Harbour One", UnitType: "Studio", Price: 480000, TotalArea: 450, Status: model.StatusUnderOffer,
			ClientInfo: &model.ClientInfo{AgencyName: "Coastal Realty", AgentName: "Sam Lee", ClientName: "Lee Park", ClientEmail: "lee@example.com"}},
	}
}

func TestWriteCSV_Quoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures()))

	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, Headers(), records[0])
	assert.Contains(t, buf.String(), `"Sea View, corner"`)
	assert.Contains(t, buf.String(), `"Marina ""North"""`)
}

func assertRoundTrip(t *testing.T, table *importer.Table) {
	t.Helper()
	m := importer.SuggestMapping(table.Headers)
	rep := importer.Validate(table, m)
	require.True(t, rep.Valid, rep.Issues)

	got := importer.Transform(table, m, nil)
	want := fixtures()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].UnitNumber, got[i].UnitNumber)
		assert.InDelta(t, want[i].Price, got[i].Price, 1e-6)
		assert.Equal(t, want[i].Status, got[i].Status)
		assert.Equal(t, want[i].ProjectName, got[i].ProjectName)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, fixtures()))
	table, err := importer.Parse(CSVFilename, &buf)
	require.NoError(t, err)
	assertRoundTrip(t, table)
}

func TestXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, fixtures()))
	table, err := importer.Parse(XLSXFilename, &buf)
	require.NoError(t, err)
	assertRoundTrip(t, table)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// Import asks more of a reserved unit than the status gate does, so a unit
// reserved without a client email exports fine but is rejected on re-import.
func TestCSVRoundTrip_ReservedWithoutClientEmail(t *testing.T) {
	units := []model.Property{
		{ID: "p4", UnitNumber: "C-02", ProjectName: "Harbour One", UnitType: "Studio", Price: 510000, TotalArea: 470, Status: model.StatusReserved,
			ClientInfo: &model.ClientInfo{AgencyName: "Coastal Realty", AgentName: "Sam Lee", ClientName: "Ana Cruz"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, units))
	table, err := importer.Parse(CSVFilename, &buf)
	require.NoError(t, err)

	rep := importer.Validate(table, importer.SuggestMapping(table.Headers))
	assert.False(t, rep.Valid)
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, 2, rep.Issues[0].Row)
	assert.Equal(t, importer.FieldClientEmail, rep.Issues[0].Field)
}
