package sheet

import (
	"strconv"
	"strings"
)

// headerScanLimit bounds the header search on large sheets.
const headerScanLimit = 20

// DetectHeaderRow scans the first 20 rows and returns the index of the row
// with the most label-like cells. Header rows are dominated by text while data
// rows mix numbers and text, so cells that parse as numbers do not count.
// Ties keep the earliest index.
func DetectHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	best, bestCount := 0, 0
	for i := 0; i < limit; i++ {
		count := 0
		for _, c := range rows[i] {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if _, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", ""), 64); err == nil {
				continue
			}
			count++
		}
		if count > bestCount {
			bestCount = count
			best = i
		}
	}
	return best
}
