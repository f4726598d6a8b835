// Package pricing computes price-adjustment previews and commits them to the inventory.
package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"inventory-backend/internal/parse"
)

// Rule names one of the price-adjustment rules.
type Rule string

const (
	RulePercentage   Rule = "percentage"
	RuleAreaRate     Rule = "area_rate"
	RuleView         Rule = "view"
	RuleBedroom      Rule = "bedroom"
	RuleSeries       Rule = "series"
	RuleBulkDecrease Rule = "bulk_decrease"
	RuleSingleUnit   Rule = "single_unit"
)

// Rules lists every rule.
var Rules = []Rule{RulePercentage, RuleAreaRate, RuleView, RuleBedroom, RuleSeries, RuleBulkDecrease, RuleSingleUnit}

// Mode selects how a series, bulk or single-unit value is applied.
type Mode string

const (
	ModeFixed      Mode = "fixed"
	ModePercentage Mode = "percentage"
	ModeAreaRate   Mode = "area_rate"
)

// DefaultViewKeyword is matched when a view rule names no keyword.
const DefaultViewKeyword = "sea"

var (
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid price adjustment")
	// ErrNoMatchingUnits is returned when a series pattern matches nothing.
	ErrNoMatchingUnits = errors.New("no matching units")
	// ErrEmptySelection is returned when a bulk decrease has no selected units.
	ErrEmptySelection = errors.New("no units selected")
	// ErrUnitNotFound is returned when a single-unit adjustment names an unknown unit.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrPreviewNotFound is returned for unknown, expired, committed or discarded previews.
	ErrPreviewNotFound = errors.New("preview not found")
	// ErrStalePreview is returned when a base price changed after the preview was computed.
	ErrStalePreview = errors.New("preview is out of date")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Input is numeric text as typed by the user. It decodes from a JSON string or number.
type Input string

func (in *Input) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*in = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*in = Input(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected a number or numeric string: %w", err)
	}
	*in = Input(n.String())
	return nil
}

// Request describes one price adjustment.
type Request struct {
	Rule        Rule                 `json:"rule"`
	Value       Input                `json:"value"`
	Mode        Mode                 `json:"mode,omitempty"`
	ViewKeyword string               `json:"viewKeyword,omitempty"`
	Bedrooms    Input                `json:"bedrooms,omitempty"`
	Pattern     string               `json:"pattern,omitempty"`
	Position    parse.SeriesPosition `json:"position,omitempty"`
	PropertyIDs []string             `json:"propertyIds,omitempty"`
	UnitNumber  string               `json:"unitNumber,omitempty"`
}

// Change is the candidate new price of one unit.
type Change struct {
	PropertyID    string  `json:"propertyId"`
	UnitNumber    string  `json:"unitNumber"`
	Matched       bool    `json:"matched"`
	OldPrice      float64 `json:"oldPrice"`
	NewPrice      float64 `json:"newPrice"`
	Difference    float64 `json:"difference"`
	PercentChange float64 `json:"percentChange"`
	PricePerSqft  float64 `json:"pricePerSqft"`
}

// Preview is a computed, not yet committed set of price changes.
type Preview struct {
	ID        string    `json:"id"`
	Request   Request   `json:"request"`
	Changes   []Change  `json:"changes"`
	Matched   int       `json:"matched"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommitResult summarises a committed preview.
type CommitResult struct {
	PreviewID string   `json:"previewId"`
	Rule      Rule     `json:"rule"`
	Updated   int      `json:"updated"`
	Changes   []Change `json:"changes"`
}

func parseRule(r Rule) (Rule, error) {
	norm := Rule(strings.ToLower(strings.TrimSpace(string(r))))
	for _, known := range Rules {
		if norm == known {
			return known, nil
		}
	}
	return "", invalid("rule", "unknown rule %q", string(r))
}

func parseMode(m Mode, allowed ...Mode) (Mode, error) {
	norm := Mode(strings.ToLower(strings.TrimSpace(string(m))))
	if norm == "" {
		return ModeFixed, nil
	}
	for _, a := range allowed {
		if norm == a {
			return a, nil
		}
	}
	return "", invalid("mode", "unsupported mode %q", string(m))
}
