package loads

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// pickupLayouts are the date shapes the feed has been observed to emit, in
// the order they are tried.
var pickupLayouts = []string{"1/2", "1/2/06", "01/02/2006", "2006-01-02"}

var folder = cases.Fold()

// Fold returns the canonical case-folded form of a value, used for
// case-insensitive city/state comparisons. SQLite's UPPER() is ASCII-only,
// so folding happens in Go on both the stored columns and the filter values.
func Fold(value string) string {
	return folder.String(strings.TrimSpace(value))
}

// NormalizePickup converts a feed pickup value to an ISO date (YYYY-MM-DD,
// UTC). Blank, "TODAY", and unparseable values normalize to today's date.
func NormalizePickup(value string, now time.Time) string {
	today := now.UTC()
	text := strings.TrimSpace(value)
	if text == "" || strings.EqualFold(text, "TODAY") {
		return today.Format("2006-01-02")
	}
	for _, layout := range pickupLayouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if layout == "1/2" {
			parsed = time.Date(today.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return parsed.Format("2006-01-02")
	}
	return today.Format("2006-01-02")
}

// NormalizeDateFilter converts a caller-supplied date filter into the ISO
// form stored in the pickup column. An empty value imposes no constraint and
// normalizes to "".
func NormalizeDateFilter(value string, now time.Time) string {
	text := strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	return NormalizePickup(text, now)
}

// ParseIntValue reads a feed integer tolerantly: thousands separators are
// dropped, blank values yield nil.
func ParseIntValue(value string) *int64 {
	text := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if text == "" {
		return nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ParseRate reads a feed rate string, tolerating currency symbols and
// thousands separators. Blank or unparseable values yield nil.
func ParseRate(value string) *float64 {
	text := strings.TrimSpace(value)
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseD2P reads a deadhead-to-pickup distance. Blank or unparseable values
// yield nil; the scoring engine penalizes nil rather than treating it as a
// zero deadhead.
func ParseD2P(value string) *float64 {
	text := strings.TrimSpace(value)
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil
	}
	return &f
}
