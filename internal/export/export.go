// Package export writes units to CSV and XLSX using the import catalog's
// labels as headers, so an export can be imported again unchanged.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"inventory-backend/internal/importer"
	"inventory-backend/internal/model"
)

// Download names.
const (
	CSVFilename  = "properties_export.csv"
	XLSXFilename = "properties_export.xlsx"
)

const sheetName = "Properties"

// Headers returns the header row.
func Headers() []string {
	out := make([]string, len(importer.Fields))
	for i, f := range importer.Fields {
		out[i] = f.Label
	}
	return out
}

// Row returns the values of p in header order. Numbers are float64 or int,
// absent values are nil.
func Row(p *model.Property) []any {
	out := make([]any, len(importer.Fields))
	for i, f := range importer.Fields {
		out[i] = value(p, f.Key)
	}
	return out
}

func value(p *model.Property, key string) any {
	ci := p.ClientInfo
	if ci == nil {
		ci = &model.ClientInfo{}
	}
	switch key {
	case importer.FieldUnitNumber:
		return p.UnitNumber
	case importer.FieldProjectName:
		return p.ProjectName
	case importer.FieldUnitType:
		return p.UnitType
	case importer.FieldPrice:
		return p.Price
	case importer.FieldTotalArea:
		return p.TotalArea
	case importer.FieldDeveloperName:
		return p.DeveloperName
	case importer.FieldBuildingName:
		return p.BuildingName
	case importer.FieldPhase:
		return p.Phase
	case importer.FieldFloorNumber:
		return intOrNil(p.FloorNumber)
	case importer.FieldBedrooms:
		return intOrNil(p.Bedrooms)
	case importer.FieldBathrooms:
		return intOrNil(p.Bathrooms)
	case importer.FieldInternalArea:
		return p.InternalArea
	case importer.FieldExternalArea:
		return p.ExternalArea
	case importer.FieldPricePerSqft:
		return p.PricePerSqft
	case importer.FieldPricePerInternalSqft:
		return p.PricePerInternalSqft
	case importer.FieldStatus:
		return string(p.Status)
	case importer.FieldView:
		if p.View == nil {
			return nil
		}
		return *p.View
	case importer.FieldAgencyName:
		return ci.AgencyName
	case importer.FieldAgentName:
		return ci.AgentName
	case importer.FieldAgentEmail:
		return ci.AgentEmail
	case importer.FieldClientName:
		return ci.ClientName
	case importer.FieldClientEmail:
		return ci.ClientEmail
	case importer.FieldClientPhone:
		return ci.ClientPhone
	}
	return nil
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes a header row and one row per unit.
func WriteCSV(w io.Writer, props []model.Property) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(importer.Fields))
	for i := range props {
		for j, v := range Row(&props[i]) {
			record[j] = text(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write unit %s: %w", props[i].UnitNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with a styled, frozen header row.
func WriteXLSX(w io.Writer, props []model.Property) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := Headers()
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	for i := range props {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(&props[i])
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write unit %s: %w", props[i].UnitNumber, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
