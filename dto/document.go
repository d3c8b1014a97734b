package dto

// Table is one detected bordered table: an ordered sequence of rows,
// each row an ordered sequence of cell strings. The first row is the header.
type Table struct {
	Rows [][]string
}

// RawPage holds one page's extraction result: the non-tabular running text
// (possibly empty) and zero or more detected tables, in encounter order.
type RawPage struct {
	Text   string
	Tables []Table
}

// NormalizedDocument is the canonical extraction output for one PDF.
// Every field is independently optional; a nil value means the matching
// text pattern was absent, which is a valid state, not an error.
type NormalizedDocument struct {
	RawText   string               `json:"raw_text"`
	LineItems []map[string]*string `json:"line_items"`
	Metadata  map[string]*string   `json:"metadata"`
	Taxes     map[string]*string   `json:"taxes"`
	Totals    map[string]*string   `json:"totals"`
}
