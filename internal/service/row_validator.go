package service

import (
	"strconv"
	"strings"
)

// Rejection reasons for a single spreadsheet row.
const (
	ReasonMissingRequired      = "missing required field (full name, class, section and school year are required)"
	ReasonInvalidPercentage    = "invalid percentage format"
	ReasonPercentageOutOfRange = "percentage out of range (must be between 0 and 100)"
)

// NormalizedRow is the validator output for a usable row: trimmed entity
// keys plus the optional percentage. A nil Percentage means the cell was
// blank, which is distinct from zero.
type NormalizedRow struct {
	FullName    string
	ClassName   string
	SectionName string
	SchoolYear  string
	Percentage  *float64
}

// Positional layout of an import row; columns beyond the fifth are ignored.
const (
	colFullName = iota
	colPercentage
	colClass
	colSection
	colSchoolYear
	rowWidth
)

// validateRow classifies one raw row. Rules apply in order and short-circuit
// on the first failure:
//
//  1. a fully blank row is silently skipped (trailing filler, not an error);
//  2. full name, class, section and school year are required;
//  3. a present percentage must parse as a number;
//  4. a parsed percentage must lie in [0, 100].
//
// A row with an empty name but other populated cells is a rejection, not a
// skip: only rows with nothing in them are filler.
func validateRow(cells []string) (row *NormalizedRow, reason string, skip bool) {
	if isBlankRow(cells) {
		return nil, "", true
	}

	normalized := &NormalizedRow{
		FullName:    strings.TrimSpace(cellAt(cells, colFullName)),
		ClassName:   strings.TrimSpace(cellAt(cells, colClass)),
		SectionName: strings.TrimSpace(cellAt(cells, colSection)),
		SchoolYear:  strings.TrimSpace(cellAt(cells, colSchoolYear)),
	}
	if normalized.FullName == "" || normalized.ClassName == "" || normalized.SectionName == "" || normalized.SchoolYear == "" {
		return nil, ReasonMissingRequired, false
	}

	rawPercentage := strings.TrimSpace(cellAt(cells, colPercentage))
	if rawPercentage != "" {
		value, err := strconv.ParseFloat(rawPercentage, 64)
		if err != nil {
			return nil, ReasonInvalidPercentage, false
		}
		if value < 0 || value > 100 {
			return nil, ReasonPercentageOutOfRange, false
		}
		normalized.Percentage = &value
	}

	return normalized, "", false
}

func cellAt(cells []string, idx int) string {
	if idx < len(cells) {
		return cells[idx]
	}
	return ""
}

func isBlankRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
