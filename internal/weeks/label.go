package weeks

import (
	"regexp"
	"strconv"
)

// LabelPrefix starts every canonical dated week label
const LabelPrefix = "Week of "

var dateToken = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)

// Token extracts the first month/day token from s and returns it without
// leading zeros, e.g. "Week of 01/05 Total" yields "1/5".
func Token(s string) (string, bool) {
	month, day, ok := parseToken(s)
	if !ok {
		return "", false
	}
	return strconv.Itoa(month) + "/" + strconv.Itoa(day), true
}

// Label builds the canonical label for a month/day token
func Label(token string) string {
	return LabelPrefix + token
}

// Canonicalize rewrites any label holding a month/day token to
// "Week of M/D". Labels without a token are returned unchanged.
func Canonicalize(label string) string {
	token, ok := Token(label)
	if !ok {
		return label
	}
	return Label(token)
}

// MonthDay returns the calendar month and day of a label. Tokens outside
// 1-12 / 1-31 are not dates and report ok=false.
func MonthDay(label string) (month, day int, ok bool) {
	month, day, ok = parseToken(label)
	if !ok || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, false
	}
	return month, day, true
}

func parseToken(s string) (int, int, bool) {
	m := dateToken.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return month, day, true
}
