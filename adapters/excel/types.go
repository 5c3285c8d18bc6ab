package excel

import "strings"

// RawRowData represents a row of raw cell text keyed by header
type RawRowData map[string]string

// ExcelData represents a whole sheet or CSV file as text
type ExcelData struct {
	Headers []string     // Column headers, trimmed
	Rows    []RawRowData // Data rows
}

// FindHeader returns the header matching name case-insensitively
func (d *ExcelData) FindHeader(name string) (string, bool) {
	for _, h := range d.Headers {
		if strings.EqualFold(h, name) {
			return h, true
		}
	}
	return "", false
}
