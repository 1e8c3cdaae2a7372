package dto

// RawRow is one spreadsheet row as read from the workbook. Line is the
// 1-indexed line number in the original file, header included, so error
// reports match what the uploader sees in Excel.
type RawRow struct {
	Line  int
	Cells []string
}

// RowError records one failed input row in encounter order.
type RowError struct {
	Line   int      `json:"line"`
	Cells  []string `json:"cells"`
	Reason string   `json:"reason"`
}

// ImportOutcome is the value returned by the reconciliation engine: counters
// plus the ordered error list. It carries no shared state; callers own it.
type ImportOutcome struct {
	Imported int        `json:"imported"`
	Updated  int        `json:"updated"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ImportSummary is the bounded user-facing result of an import run. Errors
// holds at most the first three reasons verbatim; RemainingErrors counts the
// rest; ErrorLog names the persisted CSV artifact when one was written.
type ImportSummary struct {
	Imported        int      `json:"imported"`
	Updated         int      `json:"updated"`
	Errors          []string `json:"errors,omitempty"`
	RemainingErrors int      `json:"remaining_errors,omitempty"`
	ErrorLog        string   `json:"error_log,omitempty"`
}
