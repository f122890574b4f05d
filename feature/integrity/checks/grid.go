package checks

import (
	"strings"
)

// GridReport describes the structure of the grid.
type GridReport struct {
	Headers          []string `json:"headers"`
	HasIDColumn      bool     `json:"has_id_column"`
	DataRows         int      `json:"data_rows"`
	RowsWithoutID    int      `json:"rows_without_id"`
	DuplicateIDs     []string `json:"duplicate_ids"`
	DuplicateHeaders []string `json:"duplicate_headers"`
	EmptyHeaders     []int    `json:"empty_headers"`
	Status           string   `json:"status"`
}

// CheckGrid inspects raw grid values: row 0 is the header row, already
// normalized by the caller into headers. A grid without an id column is an
// error; duplicates and blank headers are warnings.
func CheckGrid(headers []string, values [][]string) *GridReport {
	report := &GridReport{
		Headers:          headers,
		DuplicateIDs:     []string{},
		DuplicateHeaders: []string{},
		EmptyHeaders:     []int{},
		Status:           "ok",
	}
	if report.Headers == nil {
		report.Headers = []string{}
	}

	idCol := -1
	seenHeaders := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		if h == "" {
			report.EmptyHeaders = append(report.EmptyHeaders, i+1)
			continue
		}
		if _, dup := seenHeaders[h]; dup {
			report.DuplicateHeaders = append(report.DuplicateHeaders, h)
			continue
		}
		seenHeaders[h] = struct{}{}
		if h == "id" {
			idCol = i
		}
	}
	report.HasIDColumn = idCol >= 0

	if !report.HasIDColumn {
		report.Status = "error"
		return report
	}
	if len(report.DuplicateHeaders) > 0 || len(report.EmptyHeaders) > 0 {
		report.Status = "warning"
	}

	if len(values) < 2 {
		return report
	}

	seenIDs := make(map[string]int)
	for _, row := range values[1:] {
		id := ""
		if idCol < len(row) {
			id = strings.TrimSpace(row[idCol])
		}
		if id == "" {
			if !blankRow(row) {
				report.RowsWithoutID++
			}
			continue
		}
		report.DataRows++
		seenIDs[id]++
		if seenIDs[id] == 2 {
			report.DuplicateIDs = append(report.DuplicateIDs, id)
		}
	}

	if len(report.DuplicateIDs) > 0 || report.RowsWithoutID > 0 {
		report.Status = "warning"
	}
	return report
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
