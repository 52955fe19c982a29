package analytics

import (
	"fmt"
	"time"

	"github.com/jhoicas/pos-ledger/internal/domain"
)

// Period ventana de calendario para las estadísticas.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	PeriodThisWeek  Period = "this_week"
	PeriodLastWeek  Period = "last_week"
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodThisYear  Period = "this_year"
	PeriodLastYear  Period = "last_year"
)

// AllPeriods en el orden en que se presentan.
var AllPeriods = []Period{
	PeriodToday, PeriodYesterday,
	PeriodThisWeek, PeriodLastWeek,
	PeriodThisMonth, PeriodLastMonth,
	PeriodThisYear, PeriodLastYear,
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek la semana empieza el domingo.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Range devuelve el intervalo semiabierto [from, to) del período, relativo a now
// y en la zona horaria de now.
func Range(p Period, now time.Time) (from, to time.Time, err error) {
	today := startOfDay(now)
	week := startOfWeek(now)
	month := startOfMonth(now)
	year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	switch p {
	case PeriodToday:
		return today, today.AddDate(0, 0, 1), nil
	case PeriodYesterday:
		return today.AddDate(0, 0, -1), today, nil
	case PeriodThisWeek:
		return week, week.AddDate(0, 0, 7), nil
	case PeriodLastWeek:
		return week.AddDate(0, 0, -7), week, nil
	case PeriodThisMonth:
		return month, month.AddDate(0, 1, 0), nil
	case PeriodLastMonth:
		return month.AddDate(0, -1, 0), month, nil
	case PeriodThisYear:
		return year, year.AddDate(1, 0, 0), nil
	case PeriodLastYear:
		return year.AddDate(-1, 0, 0), year, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: período %q", domain.ErrInvalidInput, p)
}
