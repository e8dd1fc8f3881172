package jalali

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Jalali years stay well below 1700 for the next few centuries, Gregorian
// input stays well above it. The cutoff disambiguates which calendar a
// parsed year belongs to.
const jalaliYearCutoff = 1700

// ParseDateTime parses a due-date string in either calendar system.
// Accepted forms: "YYYY/MM/DD[ HH:MM[:SS]]" and the dash-separated
// equivalents, plus RFC 3339. Years below the cutoff are treated as Jalali
// and converted to Gregorian. Date-only input takes the current clock time
// so ordering within the day is preserved.
func ParseDateTime(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(PersianDigitsToASCII(value))
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	datePart, timePart, hasTime := strings.Cut(value, " ")

	year, month, day, err := parseDatePart(datePart)
	if err != nil {
		return time.Time{}, err
	}

	hour, minute, sec := now.Hour(), now.Minute(), now.Second()
	if hasTime {
		hour, minute, sec, err = parseTimePart(timePart)
		if err != nil {
			return time.Time{}, err
		}
	}

	if year < jalaliYearCutoff {
		jt := ptime.Date(year, ptime.Month(month), day, hour, minute, sec, 0, now.Location())
		return jt.Time(), nil
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, 0, now.Location()), nil
}

func parseDatePart(s string) (year, month, day int, err error) {
	sep := "/"
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q, expected YYYY/MM/DD", s)
	}

	year, err = strconv.Atoi(parts[0])
	if err == nil {
		month, err = strconv.Atoi(parts[1])
	}
	if err == nil {
		day, err = strconv.Atoi(parts[2])
	}
	if err != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("invalid date %q, expected YYYY/MM/DD", s)
	}
	return year, month, day, nil
}

func parseTimePart(s string) (hour, minute, sec int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err == nil {
		minute, err = strconv.Atoi(parts[1])
	}
	if err == nil && len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
	}
	if err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return hour, minute, sec, nil
}

// PersianDigitsToASCII is the inverse of PersianDigits, so Persian-keyboard
// input parses like ASCII input. Eastern Arabic-Indic digits are accepted
// too.
func PersianDigitsToASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
