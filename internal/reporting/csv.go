package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RenderCSV renders a table as CSV string, header first.
func RenderCSV(t *Table) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	_ = w.Write(t.Columns)

	// Rows
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = FormatCell(row[i])
			}
		}
		_ = w.Write(record)
	}

	w.Flush()
	return sb.String()
}

// FormatCell renders one typed cell as text. Floats keep full precision.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case time.Time:
		return c.Format("2006-01-02")
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
