package grid

import (
	"regexp"
	"strings"

	"grid-sync/core/content"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonWordRe    = regexp.MustCompile(`[^\w]`)
)

// NormalizeHeader turns a header cell into a content key:
// "  Unit Price ($) " becomes "unit_price_".
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = whitespaceRe.ReplaceAllString(h, "_")
	h = nonWordRe.ReplaceAllString(h, "")
	return strings.ToLower(h)
}

// NormalizeHeaders normalizes a header row positionally.
func NormalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// NormalizeCell trims a cell; blank cells become null.
func NormalizeCell(v string) content.Value {
	v = strings.TrimSpace(v)
	if v == "" {
		return content.Null()
	}
	return content.String(v)
}

// rowContent maps a physical row onto the normalized headers. Columns with an
// empty key are ignored. For a duplicated key the later column wins.
func rowContent(headers []string, cells []string) content.Content {
	c := content.New()
	for i, key := range headers {
		if key == "" {
			continue
		}
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		c.Set(key, NormalizeCell(cell))
	}
	return c
}

// rowCells renders content as a row aligned to headers. Missing and null values
// render as empty cells.
func rowCells(headers []string, c content.Content) []string {
	byKey := make(map[string]string, c.Len())
	for _, k := range c.Keys() {
		nk := NormalizeHeader(k)
		if _, dup := byKey[nk]; dup {
			continue
		}
		v, _ := c.Get(k)
		byKey[nk] = v.String()
	}

	cells := make([]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		cells[i] = byKey[h]
	}
	return cells
}

// indexOf returns the first position of key in headers, or -1.
func indexOf(headers []string, key string) int {
	for i, h := range headers {
		if h == key {
			return i
		}
	}
	return -1
}
