package timepolicy

import (
	"fmt"
	"time"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

// FormatDays renders a day count such as "1 día" or "5 días". The sign is dropped.
func FormatDays(days int) string {
	if days < 0 {
		days = -days
	}
	return plural(days, "día", "días")
}

func FormatHours(hours int) string {
	if hours < 0 {
		hours = -hours
	}
	return plural(hours, "hora", "horas")
}

// FormatCountdown renders the remaining time until target, e.g. "5 horas",
// "2 días y 3 horas" or "1 día y 4 horas atrasado" once the deadline has passed.
func FormatCountdown(target, now time.Time) string {
	hours := HoursUntil(target, now)

	if hours < 0 {
		abs := -hours
		return fmt.Sprintf("%s y %s atrasado", FormatDays(abs/24), FormatHours(abs%24))
	}

	if hours < 24 {
		return FormatHours(hours)
	}

	days, rest := hours/24, hours%24
	if rest == 0 {
		return FormatDays(days)
	}
	return fmt.Sprintf("%s y %s", FormatDays(days), FormatHours(rest))
}

// FormatLongDate renders "15 de enero de 2025".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatDateTime renders "15/01/2025, 09:05:00".
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006, 15:04:05")
}
