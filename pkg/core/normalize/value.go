package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseAmount coerces a spreadsheet cell to a float64. Real-world exports mix
// blanks, dashes, currency symbols, thousands separators and accounting-style
// "(500)" negatives; all of those resolve here. Anything unparseable is 0,
// never an error, so one bad cell cannot sink an upload.
func ParseAmount(v interface{}) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" || s == "-" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	if negative {
		f = -f
	}
	return f
}

// excelEpochOffset is the number of days between the Excel serial epoch
// (1900-01-01, with the fictitious leap day) and the Unix epoch.
const excelEpochOffset = 25569

// serialFloor separates plausible Excel date serials from ordinary numbers.
// 30000 corresponds to 1982; sheets with numeric date cells land above it.
const serialFloor = 30000

// dateLayouts are tried in order against string date cells. The "Jan '06"
// layout makes ParseMonthKey idempotent: feeding a label it produced back in
// yields the same key.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan '06",
	"Jan-06",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

// ParseMonthKey resolves a date cell to a display label ("Jan '24") and a
// sortable key ("2024-01"). Numeric cells above the serial floor are treated
// as Excel day serials. Strings go through the layout list; a string that is
// itself a large number is retried as a serial. Unparseable input falls back
// to the raw string as both label and key, and empty input maps to the
// "Unknown" bucket so no row is silently lost.
func ParseMonthKey(v interface{}) (label, key string) {
	switch n := v.(type) {
	case float64:
		if n > serialFloor {
			return fromTime(time.Unix(int64((n-excelEpochOffset)*86400), 0).UTC())
		}
		v = fmt.Sprintf("%v", n)
	case int:
		if n > serialFloor {
			return fromTime(time.Unix(int64(n-excelEpochOffset)*86400, 0).UTC())
		}
		v = strconv.Itoa(n)
	case nil:
		v = ""
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	if s == "" {
		return "Unknown", "0000-00"
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil && f > serialFloor {
		return fromTime(time.Unix(int64((f-excelEpochOffset)*86400), 0).UTC())
	}

	return s, s
}

func fromTime(t time.Time) (label, key string) {
	return fmt.Sprintf("%s '%s", t.Format("Jan"), t.Format("06")), t.Format("2006-01")
}
