package importer

import (
	"slices"
	"sort"
	"strings"
	"unicode"
)

// Kind is the value type a field expects.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindInt    Kind = "integer"
	KindStatus Kind = "status"
)

// Field is one system field a file column can be mapped to.
type Field struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Kind     Kind     `json:"kind"`
	Aliases  []string `json:"-"`
}

// Field keys.
const (
	FieldUnitNumber           = "unitNumber"
	FieldProjectName          = "projectName"
	FieldUnitType             = "unitType"
	FieldPrice                = "price"
	FieldTotalArea            = "totalArea"
	FieldDeveloperName        = "developerName"
	FieldBuildingName         = "buildingName"
	FieldPhase                = "phase"
	FieldFloorNumber          = "floorNumber"
	FieldBedrooms             = "bedrooms"
	FieldBathrooms            = "bathrooms"
	FieldInternalArea         = "internalArea"
	FieldExternalArea         = "externalArea"
	FieldPricePerSqft         = "pricePerSqft"
	FieldPricePerInternalSqft = "pricePerInternalSqft"
	FieldStatus               = "status"
	FieldView                 = "view"
	FieldAgencyName           = "agencyName"
	FieldAgentName            = "agentName"
	FieldAgentEmail           = "agentEmail"
	FieldClientName           = "clientName"
	FieldClientEmail          = "clientEmail"
	FieldClientPhone          = "clientPhone"
)

// Fields is the import catalog in display order: five required fields, then the optional ones.
var Fields = []Field{
	{Key: FieldUnitNumber, Label: "Unit Number", Required: true, Kind: KindText, Aliases: []string{"unit no", "unit"}},
	{Key: FieldProjectName, Label: "Project Name", Required: true, Kind: KindText, Aliases: []string{"project"}},
	{Key: FieldUnitType, Label: "Unit Type", Required: true, Kind: KindText, Aliases: []string{"type"}},
	{Key: FieldPrice, Label: "Price", Required: true, Kind: KindNumber, Aliases: []string{"list price", "asking price"}},
	{Key: FieldTotalArea, Label: "Total Area", Required: true, Kind: KindNumber, Aliases: []string{"area", "size"}},

	{Key: FieldDeveloperName, Label: "Developer Name", Kind: KindText, Aliases: []string{"developer"}},
	{Key: FieldBuildingName, Label: "Building Name", Kind: KindText, Aliases: []string{"building", "tower"}},
	{Key: FieldPhase, Label: "Phase", Kind: KindText},
	{Key: FieldFloorNumber, Label: "Floor Number", Kind: KindInt, Aliases: []string{"floor", "level"}},
	{Key: FieldBedrooms, Label: "Bedrooms", Kind: KindInt, Aliases: []string{"beds", "bedroom"}},
	{Key: FieldBathrooms, Label: "Bathrooms", Kind: KindInt, Aliases: []string{"baths", "bathroom"}},
	{Key: FieldInternalArea, Label: "Internal Area", Kind: KindNumber, Aliases: []string{"internal"}},
	{Key: FieldExternalArea, Label: "External Area", Kind: KindNumber, Aliases: []string{"external", "balcony"}},
	{Key: FieldPricePerSqft, Label: "Price per Sqft", Kind: KindNumber, Aliases: []string{"rate"}},
	{Key: FieldPricePerInternalSqft, Label: "Price per Internal Sqft", Kind: KindNumber},
	{Key: FieldStatus, Label: "Status", Kind: KindStatus},
	{Key: FieldView, Label: "View", Kind: KindText},
	{Key: FieldAgencyName, Label: "Agency Name", Kind: KindText, Aliases: []string{"agency"}},
	{Key: FieldAgentName, Label: "Agent Name", Kind: KindText, Aliases: []string{"agent"}},
	{Key: FieldAgentEmail, Label: "Agent Email", Kind: KindText},
	{Key: FieldClientName, Label: "Client Name", Kind: KindText, Aliases: []string{"client", "buyer"}},
	{Key: FieldClientEmail, Label: "Client Email", Kind: KindText},
	{Key: FieldClientPhone, Label: "Client Phone", Kind: KindText},
}

// FieldByKey returns the catalog entry for key.
func FieldByKey(key string) (Field, bool) {
	for _, f := range Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Mapping maps field keys to file headers. Unmapped fields are absent or empty.
type Mapping map[string]string

// SuggestMapping proposes a header for each field: exact matches on the key,
// label or an alias first, then headers containing one of them. Every header
// is used at most once.
func SuggestMapping(headers []string) Mapping {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalize(h)
	}
	used := make([]bool, len(headers))
	m := make(Mapping)

	for _, f := range Fields {
		for i := range headers {
			if !used[i] && slices.Contains(names(f), norm[i]) {
				m[f.Key] = headers[i]
				used[i] = true
				break
			}
		}
	}

	// Longer names first so "Price per Internal Sqft" is not claimed by "price".
	pending := make([]Field, 0, len(Fields))
	for _, f := range Fields {
		if _, ok := m[f.Key]; !ok {
			pending = append(pending, f)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return len(normalize(pending[i].Label)) > len(normalize(pending[j].Label))
	})
	for _, f := range pending {
	headers:
		for i := range headers {
			if used[i] || norm[i] == "" {
				continue
			}
			for _, n := range names(f) {
				if strings.Contains(norm[i], n) {
					m[f.Key] = headers[i]
					used[i] = true
					break headers
				}
			}
		}
	}
	return m
}

// MissingRequired returns the required field keys that m leaves unmapped.
func (m Mapping) MissingRequired() []string {
	var missing []string
	for _, f := range Fields {
		if f.Required && strings.TrimSpace(m[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}

func names(f Field) []string {
	out := []string{normalize(f.Key), normalize(f.Label)}
	for _, a := range f.Aliases {
		out = append(out, normalize(a))
	}
	return out
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
