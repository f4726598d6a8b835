package pricing

import (
	"errors"
	"strings"

	"inventory-backend/internal/model"
	"inventory-backend/internal/parse"
)

// Calculate computes the preview of req over props without changing anything.
// The returned preview has no ID; the Engine assigns one when it parks it.
func Calculate(req Request, props []model.Property) (*Preview, error) {
	rule, err := parseRule(req.Rule)
	if err != nil {
		return nil, err
	}
	req.Rule = rule

	value, err := parse.Number(string(req.Value))
	if err != nil {
		if errors.Is(err, parse.ErrEmptyNumber) {
			return nil, invalid("value", "an adjustment value is required")
		}
		return nil, invalid("value", "%v", err)
	}

	var changes []Change
	switch rule {
	case RulePercentage:
		changes = mapAll(props, func(p *model.Property) (float64, bool) {
			return p.Price * (1 + value/100), true
		})

	case RuleAreaRate:
		changes = mapAll(props, func(p *model.Property) (float64, bool) {
			if p.TotalArea <= 0 {
				return p.Price, false
			}
			return p.TotalArea * value, true
		})

	case RuleView:
		keyword := strings.ToLower(strings.TrimSpace(req.ViewKeyword))
		if keyword == "" {
			keyword = DefaultViewKeyword
		}
		req.ViewKeyword = keyword
		changes = mapAll(props, func(p *model.Property) (float64, bool) {
			if p.View == nil || !strings.Contains(strings.ToLower(*p.View), keyword) {
				return p.Price, false
			}
			return p.Price + value, true
		})

	case RuleBedroom:
		bedrooms, err := parse.Int(string(req.Bedrooms))
		if err != nil {
			return nil, invalid("bedrooms", "a bedroom count is required")
		}
		changes = mapAll(props, func(p *model.Property) (float64, bool) {
			if p.Bedrooms == nil || *p.Bedrooms != bedrooms {
				return p.Price, false
			}
			return p.Price + value, true
		})

	case RuleSeries:
		if changes, err = calculateSeries(&req, props, value); err != nil {
			return nil, err
		}

	case RuleBulkDecrease:
		if changes, err = calculateBulkDecrease(&req, props, value); err != nil {
			return nil, err
		}

	case RuleSingleUnit:
		if changes, err = calculateSingleUnit(&req, props, value); err != nil {
			return nil, err
		}
	}

	preview := &Preview{Request: req, Changes: changes}
	var negative []string
	for _, c := range changes {
		if c.Matched {
			preview.Matched++
		}
		if c.NewPrice < 0 {
			negative = append(negative, c.UnitNumber)
		}
	}
	if len(negative) > 0 {
		return nil, invalid("value", "adjustment would make the price negative for %s", strings.Join(negative, ", "))
	}
	return preview, nil
}

func calculateSeries(req *Request, props []model.Property, value float64) ([]Change, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, invalid("pattern", "a series pattern is required")
	}
	switch req.Position {
	case "":
		req.Position = parse.SeriesPrefix
	case parse.SeriesPrefix, parse.SeriesSuffix:
	default:
		return nil, invalid("position", "position must be prefix or suffix")
	}
	mode, err := parseMode(req.Mode, ModeFixed, ModePercentage, ModeAreaRate)
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	var changes []Change
	matched := 0
	for i := range props {
		p := &props[i]
		if !parse.MatchSeries(p.UnitNumber, req.Pattern, req.Position) {
			continue
		}
		price, ok := applyMode(mode, p, value)
		if ok {
			matched++
		}
		changes = append(changes, newChange(p, price, ok))
	}
	// An area re-rate over units without area changes nothing.
	if matched == 0 {
		return nil, ErrNoMatchingUnits
	}
	return changes, nil
}

func calculateBulkDecrease(req *Request, props []model.Property, value float64) ([]Change, error) {
	if len(req.PropertyIDs) == 0 {
		return nil, ErrEmptySelection
	}
	mode, err := parseMode(req.Mode, ModeFixed, ModePercentage)
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	selected := make(map[string]struct{}, len(req.PropertyIDs))
	for _, id := range req.PropertyIDs {
		selected[id] = struct{}{}
	}
	var changes []Change
	for i := range props {
		p := &props[i]
		if _, ok := selected[p.ID]; !ok {
			continue
		}
		price := p.Price - value
		if mode == ModePercentage {
			price = p.Price * (1 - value/100)
		}
		changes = append(changes, newChange(p, price, true))
	}
	if len(changes) == 0 {
		return nil, ErrEmptySelection
	}
	return changes, nil
}

func calculateSingleUnit(req *Request, props []model.Property, value float64) ([]Change, error) {
	unit := strings.TrimSpace(req.UnitNumber)
	if unit == "" {
		return nil, invalid("unitNumber", "a unit number is required")
	}
	mode, err := parseMode(req.Mode, ModeFixed, ModePercentage, ModeAreaRate)
	if err != nil {
		return nil, err
	}
	req.Mode = mode

	for i := range props {
		p := &props[i]
		if !strings.EqualFold(strings.TrimSpace(p.UnitNumber), unit) {
			continue
		}
		price, ok := applyMode(mode, p, value)
		if !ok {
			return nil, invalid("unitNumber", "unit %s has no total area to re-rate", p.UnitNumber)
		}
		return []Change{newChange(p, price, true)}, nil
	}
	return nil, ErrUnitNotFound
}

// applyMode returns the adjusted price. ok is false when an area re-rate has no area to work with.
func applyMode(mode Mode, p *model.Property, value float64) (price float64, ok bool) {
	switch mode {
	case ModePercentage:
		return p.Price * (1 + value/100), true
	case ModeAreaRate:
		if p.TotalArea <= 0 {
			return p.Price, false
		}
		return p.TotalArea * value, true
	default:
		return p.Price + value, true
	}
}

func mapAll(props []model.Property, fn func(p *model.Property) (float64, bool)) []Change {
	changes := make([]Change, 0, len(props))
	for i := range props {
		price, matched := fn(&props[i])
		changes = append(changes, newChange(&props[i], price, matched))
	}
	return changes
}

func newChange(p *model.Property, price float64, matched bool) Change {
	c := Change{
		PropertyID: p.ID,
		UnitNumber: p.UnitNumber,
		Matched:    matched,
		OldPrice:   p.Price,
		NewPrice:   price,
		Difference: price - p.Price,
	}
	if p.Price != 0 {
		c.PercentChange = (price - p.Price) / p.Price * 100
	}
	if p.TotalArea > 0 {
		c.PricePerSqft = price / p.TotalArea
	}
	return c
}
