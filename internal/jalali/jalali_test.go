package jalali

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocale(t *testing.T) {
	assert.Equal(t, LocalePersian, ParseLocale("fa"))
	assert.Equal(t, LocalePersian, ParseLocale("fa-IR"))
	assert.Equal(t, LocalePersian, ParseLocale("FA"))
	assert.Equal(t, LocaleEnglish, ParseLocale("en"))
	assert.Equal(t, LocaleEnglish, ParseLocale(""))
	assert.Equal(t, LocaleEnglish, ParseLocale("de"))
}

func TestLocaleContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, LocaleEnglish, FromContext(ctx), "default when unset")

	ctx = WithLocale(ctx, LocalePersian)
	assert.Equal(t, LocalePersian, FromContext(ctx))
}

func TestPersianDigits_RoundTrip(t *testing.T) {
	assert.Equal(t, "۱۴۰۳/۰۶/۱۵", PersianDigits("1403/06/15"))
	assert.Equal(t, "1403/06/15", PersianDigitsToASCII("۱۴۰۳/۰۶/۱۵"))

	// Eastern Arabic-Indic digits are normalized too.
	assert.Equal(t, "123", PersianDigitsToASCII("١٢٣"))

	// Non-digits pass through untouched.
	assert.Equal(t, "abc", PersianDigits("abc"))
}

func TestFormatDate(t *testing.T) {
	// 2024-09-05 is 1403/06/15 in the Jalali calendar.
	v := time.Date(2024, 9, 5, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-09-05", FormatDate(LocaleEnglish, v))
	assert.Equal(t, PersianDigits("1403/06/15"), FormatDate(LocalePersian, v))
}

func TestFormatDateTime(t *testing.T) {
	v := time.Date(2024, 9, 5, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-09-05 10:30", FormatDateTime(LocaleEnglish, v))
	assert.Equal(t, PersianDigits("1403/06/15 10:30"), FormatDateTime(LocalePersian, v))
}

func TestFormatDateFull(t *testing.T) {
	// A Thursday.
	v := time.Date(2024, 9, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Thursday 2024-09-05", FormatDateFull(LocaleEnglish, v))
	assert.Equal(t, "پنجشنبه "+FormatDate(LocalePersian, v), FormatDateFull(LocalePersian, v))
}

func TestParseDateTime_Gregorian(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)

	parsed, err := ParseDateTime("2025-07-01", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, parsed.Year())
	assert.Equal(t, time.July, parsed.Month())
	assert.Equal(t, 1, parsed.Day())
	// Date-only input carries the current clock time.
	assert.Equal(t, 14, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())

	parsed, err = ParseDateTime("2025/07/01 09:15", now)
	require.NoError(t, err)
	assert.Equal(t, 9, parsed.Hour())
	assert.Equal(t, 15, parsed.Minute())
	assert.Equal(t, 0, parsed.Second())
}

func TestParseDateTime_RFC3339(t *testing.T) {
	now := time.Now()

	parsed, err := ParseDateTime("2025-07-01T09:15:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 9, 15, 0, 0, time.UTC), parsed)
}

func TestParseDateTime_Jalali(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	parsed, err := ParseDateTime("1403/06/15 08:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.September, parsed.Month())
	assert.Equal(t, 5, parsed.Day())
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, 8, parsed.Hour())
}

func TestParseDateTime_JalaliDayBeyondGregorianMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	// Ordibehesht has 31 days; a Gregorian-layout parser would reject
	// day 31 of "month 02".
	parsed, err := ParseDateTime("1403/02/31", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC).Format(time.DateOnly), parsed.Format(time.DateOnly))
}

func TestParseDateTime_PersianDigits(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	parsed, err := ParseDateTime(PersianDigits("1403/06/15"), now)
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.September, parsed.Month())
}

func TestParseDateTime_RoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	input := "۱۴۰۳/۰۶/۱۵"
	parsed, err := ParseDateTime(input, now)
	require.NoError(t, err)
	assert.Equal(t, input, FormatDate(LocalePersian, parsed))
}

func TestParseDateTime_Invalid(t *testing.T) {
	now := time.Now()
	for _, input := range []string{
		"",
		"not a date",
		"2025-13-01",
		"2025-01-32",
		"2025-01",
		"2025-01-01 25:00",
		"2025-01-01 10:61",
	} {
		_, err := ParseDateTime(input, now)
		assert.Error(t, err, input)
	}
}
