package models

import "time"

// Result links one student to one school year with an optional percentage.
// The (student, school year) pair is unique; class and section are mutable
// attributes of that pairing. ImportedAt is set once at creation and never
// updated afterwards.
type Result struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SchoolYearID string    `db:"school_year_id" json:"school_year_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	SectionID    string    `db:"section_id" json:"section_id"`
	Percentage   *float64  `db:"percentage" json:"percentage,omitempty"`
	ImportedAt   time.Time `db:"imported_at" json:"imported_at"`
}

// ResultDetail is a Result joined with its dimension names for display.
type ResultDetail struct {
	ID          string    `db:"id" json:"id"`
	StudentName string    `db:"student_name" json:"student_name"`
	Percentage  *float64  `db:"percentage" json:"percentage,omitempty"`
	ClassName   string    `db:"class_name" json:"class_name"`
	SectionName string    `db:"section_name" json:"section_name"`
	SchoolYear  string    `db:"school_year" json:"school_year"`
	ImportedAt  time.Time `db:"imported_at" json:"imported_at"`
}

// ResultFilter captures the browse-screen filters.
type ResultFilter struct {
	Search     string `form:"q"`
	Class      string `form:"classe"`
	Section    string `form:"section"`
	SchoolYear string `form:"annee"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// FilterOptions lists the distinct dimension values used to populate the
// browse-screen dropdowns.
type FilterOptions struct {
	Classes     []string `json:"classes"`
	Sections    []string `json:"sections"`
	SchoolYears []string `json:"school_years"`
}

// Pagination mirrors the response envelope pagination block.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
