package importer

import (
	"strings"

	"inventory-backend/internal/model"
	"inventory-backend/internal/parse"
)

// Default split of total area when the file has no internal/external columns.
const (
	internalShare = 0.8
	externalShare = 0.2
)

// Transform builds units from rows that passed Validate. projectIDs maps
// lower-cased project names to project ids; unknown names keep no id.
func Transform(t *Table, m Mapping, projectIDs map[string]string) []model.Property {
	props := make([]model.Property, 0, len(t.Rows))
	for _, row := range t.Rows {
		props = append(props, transformRow(row, m, projectIDs))
	}
	return props
}

func transformRow(row Row, m Mapping, projectIDs map[string]string) model.Property {
	text := func(key string) string { return row.Value(m[key]) }
	number := func(key string) (float64, bool) {
		v, err := parse.Number(text(key))
		return v, err == nil
	}
	integer := func(key string) *int {
		v, err := parse.Int(text(key))
		if err != nil {
			return nil
		}
		return &v
	}

	p := model.Property{
		UnitNumber:    text(FieldUnitNumber),
		ProjectName:   text(FieldProjectName),
		DeveloperName: text(FieldDeveloperName),
		BuildingName:  text(FieldBuildingName),
		Phase:         text(FieldPhase),
		UnitType:      text(FieldUnitType),
		FloorNumber:   integer(FieldFloorNumber),
		Bedrooms:      integer(FieldBedrooms),
		Bathrooms:     integer(FieldBathrooms),
		Status:        model.StatusAvailable,
	}
	if id, ok := projectIDs[strings.ToLower(p.ProjectName)]; ok {
		p.ProjectID = &id
	}
	if v := text(FieldView); v != "" {
		p.View = &v
	}
	if st, ok := model.ParseStatus(text(FieldStatus)); ok {
		p.Status = st
	}

	InferLocation(&p)

	p.Price, _ = number(FieldPrice)
	p.TotalArea, _ = number(FieldTotalArea)
	p.RecomputeDerived()

	internal, hasInternal := number(FieldInternalArea)
	external, hasExternal := number(FieldExternalArea)
	if !hasInternal {
		internal = p.TotalArea * internalShare
	}
	if !hasExternal {
		external = p.TotalArea * externalShare
	}
	p.InternalArea, p.ExternalArea = internal, external
	if p.InternalArea > 0 {
		p.PricePerInternalSqft = p.Price / p.InternalArea
	}
	if v, ok := number(FieldPricePerSqft); ok {
		p.PricePerSqft = v
	}
	if v, ok := number(FieldPricePerInternalSqft); ok {
		p.PricePerInternalSqft = v
	}

	if p.Status.RequiresClientInfo() {
		p.ClientInfo = &model.ClientInfo{
			AgencyName:  text(FieldAgencyName),
			AgentName:   text(FieldAgentName),
			AgentEmail:  text(FieldAgentEmail),
			ClientName:  text(FieldClientName),
			ClientEmail: text(FieldClientEmail),
			ClientPhone: text(FieldClientPhone),
		}
	}
	return p
}

// InferLocation fills a missing building name and floor number from the unit
// number, so "A-1203" lands on floor 12 of building A.
func InferLocation(p *model.Property) {
	pu, err := parse.ParseUnitNumber(p.UnitNumber)
	if err != nil {
		return
	}
	if p.FloorNumber == nil && pu.Floor > 0 {
		floor := pu.Floor
		p.FloorNumber = &floor
	}
	if p.BuildingName == "" {
		p.BuildingName = pu.Building
	}
}
