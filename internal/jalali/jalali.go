// Package jalali localizes timestamps for display in the Persian (Jalali)
// solar calendar and parses due-date input in either calendar system.
// Storage stays Gregorian everywhere; conversion happens at the edges only.
package jalali

import (
	"context"
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocalePersian Locale = "fa"
)

type contextKey struct{}

// WithLocale attaches the caller's display locale to the context. The
// locale is request-scoped, never global.
func WithLocale(ctx context.Context, locale Locale) context.Context {
	return context.WithValue(ctx, contextKey{}, locale)
}

func FromContext(ctx context.Context) Locale {
	if locale, ok := ctx.Value(contextKey{}).(Locale); ok {
		return locale
	}
	return LocaleEnglish
}

func ParseLocale(s string) Locale {
	if strings.HasPrefix(strings.ToLower(s), "fa") {
		return LocalePersian
	}
	return LocaleEnglish
}

var persianDigits = [10]rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// PersianDigits replaces ASCII digits with their Extended Arabic-Indic
// counterparts.
func PersianDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(persianDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var persianWeekdays = [7]string{
	"یکشنبه",   // time.Sunday
	"دوشنبه",   // time.Monday
	"سه‌شنبه",  // time.Tuesday
	"چهارشنبه", // time.Wednesday
	"پنجشنبه",  // time.Thursday
	"جمعه",     // time.Friday
	"شنبه",     // time.Saturday
}

// FormatDate renders t as a localized date string: Jalali with Persian
// digits for the Persian locale, ISO for everything else.
func FormatDate(locale Locale, t time.Time) string {
	if locale != LocalePersian {
		return t.Format("2006-01-02")
	}
	pt := ptime.New(t)
	return PersianDigits(fmt.Sprintf("%04d/%02d/%02d", pt.Year(), int(pt.Month()), pt.Day()))
}

// FormatDateTime renders t as a localized datetime string.
func FormatDateTime(locale Locale, t time.Time) string {
	if locale != LocalePersian {
		return t.Format("2006-01-02 15:04")
	}
	pt := ptime.New(t)
	return PersianDigits(fmt.Sprintf("%04d/%02d/%02d %02d:%02d",
		pt.Year(), int(pt.Month()), pt.Day(), pt.Hour(), pt.Minute()))
}

// FormatDateFull renders t with the weekday name, e.g. "شنبه ۱۴۰۳/۰۶/۱۵".
func FormatDateFull(locale Locale, t time.Time) string {
	if locale != LocalePersian {
		return t.Format("Monday 2006-01-02")
	}
	return persianWeekdays[int(t.Weekday())] + " " + FormatDate(locale, t)
}
