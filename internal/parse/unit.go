package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	seqRe       = regexp.MustCompile(`(\d+)\s*$`)
	separatorRe = regexp.MustCompile(`[\s#_/-]+`)
)

// ParsedUnit holds the structured data parsed from a unit number.
type ParsedUnit struct {
	Building string
	Floor    int
	Seq      int
}

// ParseUnitNumber splits a unit number such as "A-1203", "T2 #0504" or "1203" into
// building, floor and sequence. The trailing digit run carries floor and sequence:
// the last two digits are the sequence and the rest is the floor.
func ParseUnitNumber(raw string) (ParsedUnit, error) {
	s := strings.TrimSpace(raw)
	s = separatorRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	loc := seqRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return ParsedUnit{}, fmt.Errorf("unable to parse unit number: %q", raw)
	}
	digits := s[loc[2]:loc[3]]
	building := strings.TrimSpace(s[:loc[0]])

	if len(digits) < 3 {
		seq, _ := strconv.Atoi(digits)
		return ParsedUnit{Building: building, Seq: seq}, nil
	}

	floor, err := strconv.Atoi(digits[:len(digits)-2])
	if err != nil {
		return ParsedUnit{}, fmt.Errorf("unable to parse floor from unit number %q: %w", raw, err)
	}
	seq, err := strconv.Atoi(digits[len(digits)-2:])
	if err != nil {
		return ParsedUnit{}, fmt.Errorf("unable to parse sequence from unit number %q: %w", raw, err)
	}
	return ParsedUnit{Building: building, Floor: floor, Seq: seq}, nil
}

// SeriesPosition selects which end of a unit number a series token is matched against.
type SeriesPosition string

const (
	SeriesPrefix SeriesPosition = "prefix"
	SeriesSuffix SeriesPosition = "suffix"
)

// MatchSeries reports whether unitNumber starts (prefix) or ends (suffix) with token.
// Matching ignores case and surrounding whitespace.
func MatchSeries(unitNumber, token string, pos SeriesPosition) bool {
	u := strings.ToLower(strings.TrimSpace(unitNumber))
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return false
	}
	switch pos {
	case SeriesSuffix:
		return strings.HasSuffix(u, t)
	default:
		return strings.HasPrefix(u, t)
	}
}
