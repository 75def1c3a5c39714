package dataprocessing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
	numericPrefix = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)`)
)

// Coerce converts a cell to a number. Text keeps only digits, '.' and '-'
// and the longest leading decimal is read, so "1,234 visits" is 1234 and
// "12.5.1" is 12.5. ok is false for non-empty text with no number in it;
// absent and blank cells are zero without being a failure.
func Coerce(c Cell) (value float64, ok bool) {
	switch c.Kind {
	case CellNumber:
		return c.Number, true
	case CellText:
		if strings.TrimSpace(c.Text) == "" {
			return 0, true
		}
		digits := nonNumeric.ReplaceAllString(c.Text, "")
		m := numericPrefix.FindString(digits)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, true
	}
}
