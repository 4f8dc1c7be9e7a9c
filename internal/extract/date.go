package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type dateLayout int

const (
	layoutDMY dateLayout = iota
	layoutYMD
	layoutDayMonthName
	layoutMonthNameDay
)

type datePattern struct {
	re     *regexp.Regexp
	layout dateLayout
}

const monthNames = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

// Filenames use `_` as a word separator, so boundaries are spelled out
// instead of relying on \b.
var datePatterns = []datePattern{
	{regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})(?:[^0-9]|$)`), layoutDMY},
	{regexp.MustCompile(`(?:^|[^0-9])(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})(?:[^0-9]|$)`), layoutYMD},
	{regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(\d{1,2})(?:st|nd|rd|th)?[\s_-]+` + monthNames + `,?[\s_-]+(\d{4}|\d{2})(?:[^0-9]|$)`), layoutDayMonthName},
	{regexp.MustCompile(`(?i)(?:^|[^0-9a-z])` + monthNames + `[\s_-]+(\d{1,2})(?:st|nd|rd|th)?,?[\s_-]+(\d{4}|\d{2})(?:[^0-9]|$)`), layoutMonthNameDay},
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ExtractDate returns the first date found in text as DD-MM-YYYY. Patterns
// are tried in order; within a pattern the earliest valid match wins.
func ExtractDate(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if date, ok := parseDate(m[1:], p.layout); ok {
				return date, true
			}
		}
	}
	return "", false
}

func parseDate(groups []string, layout dateLayout) (string, bool) {
	var dayStr, monthStr, yearStr string
	switch layout {
	case layoutDMY:
		dayStr, monthStr, yearStr = groups[0], groups[1], groups[2]
	case layoutYMD:
		yearStr, monthStr, dayStr = groups[0], groups[1], groups[2]
	case layoutDayMonthName:
		dayStr, monthStr, yearStr = groups[0], groups[1], groups[2]
	case layoutMonthNameDay:
		monthStr, dayStr, yearStr = groups[0], groups[1], groups[2]
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", false
	}

	month, ok := monthNumbers[strings.ToLower(monthStr)]
	if !ok {
		month, err = strconv.Atoi(monthStr)
		if err != nil {
			return "", false
		}
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", false
	}
	if len(yearStr) == 2 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	if month < 1 || month > 12 {
		return "", false
	}
	// time.Date normalizes 31-02 into March
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Day() != day || int(parsed.Month()) != month {
		return "", false
	}

	return fmt.Sprintf("%02d-%02d-%04d", day, month, year), true
}

// MonthKey turns a DD-MM-YYYY date into a YYYY-MM index key
func MonthKey(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return ""
	}
	return parts[2] + "-" + parts[1]
}
