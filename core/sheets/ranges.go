package sheets

import (
	"fmt"
	"strings"
)

// LastColumn is the right edge of every range the adapter touches.
const LastColumn = "ZZ"

// QuoteSheet quotes a sheet name for use in A1 notation.
func QuoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Range builds an A1 range on the given sheet, e.g. Range("Sheet1", "A:ZZ").
func Range(sheet, a1 string) string {
	return QuoteSheet(sheet) + "!" + a1
}

// RowRange covers one full physical row (1-based).
func RowRange(sheet string, row int) string {
	return Range(sheet, fmt.Sprintf("A%d:%s%d", row, LastColumn, row))
}
