package dashboard

import (
	"time"

	"github.com/sitebooks/sitebooks-backend/internal/domain/dashboard"
)

const (
	dateLayout        = "2006-01-02"
	defaultWindowDays = 30
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// ResolveDateRange turns the optional from/to dates into an inclusive window in loc.
//   - both given: [from, to]
//   - neither: the 30 days ending today
//   - only from: [from, from+30d]
//   - only to: [to-30d, to]
func ResolveDateRange(from, to string, now time.Time, loc *time.Location) (dashboard.DateRange, error) {
	if loc == nil {
		loc = time.Local
	}

	var fromDay, toDay time.Time
	var err error
	if from != "" {
		if fromDay, err = time.ParseInLocation(dateLayout, from, loc); err != nil {
			return dashboard.DateRange{}, err
		}
	}
	if to != "" {
		if toDay, err = time.ParseInLocation(dateLayout, to, loc); err != nil {
			return dashboard.DateRange{}, err
		}
	}

	switch {
	case from != "" && to != "":
	case from == "" && to == "":
		toDay = now.In(loc)
		fromDay = toDay.AddDate(0, 0, -defaultWindowDays)
	case from != "":
		toDay = fromDay.AddDate(0, 0, defaultWindowDays)
	default:
		fromDay = toDay.AddDate(0, 0, -defaultWindowDays)
	}

	r := dashboard.DateRange{From: startOfDay(fromDay), To: endOfDay(toDay)}
	if r.From.After(r.To) {
		return dashboard.DateRange{}, dashboard.ErrInvalidDateRange
	}
	return r, nil
}
