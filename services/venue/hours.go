package venue

import (
	"time"

	"meetpoint/models"
)

// minutesOfWeek reduces a local weekday/hour/minute to minutes since the
// start of the week (Sunday 00:00).
func minutesOfWeek(day, hour, minute int) int {
	return day*24*60 + hour*60 + minute
}

// IsOpenAt reports whether a venue with the given weekly schedule is open at
// instant, evaluated against the venue's own time zone. The week-wrap
// arithmetic lives here and nowhere else: a period whose close does not
// exceed its open spans midnight into the next day (or the next week).
//
// An empty schedule or an unloadable zone yields false. A period opening
// Sunday 00:00 with no close means always open. Periods missing their open
// point are skipped rather than treated as errors.
func IsOpenAt(instant time.Time, timeZone string, schedule []models.SchedulePeriod) bool {
	if len(schedule) == 0 {
		return false
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return false
	}

	local := instant.In(loc)
	now := minutesOfWeek(int(local.Weekday()), local.Hour(), local.Minute())

	for _, p := range schedule {
		o, c := p.Open, p.Close

		if o != nil && o.Day == 0 && o.Hour == 0 && o.Minute == 0 && c == nil {
			return true
		}
		if o == nil {
			continue
		}
		openMin := minutesOfWeek(o.Day, o.Hour, o.Minute)

		// Open-ended period: open from its start for the rest of the week.
		if c == nil {
			if now >= openMin {
				return true
			}
			continue
		}
		closeMin := minutesOfWeek(c.Day, c.Hour, c.Minute)

		if closeMin > openMin {
			if now >= openMin && now < closeMin {
				return true
			}
		} else {
			// Week wrap, e.g. Saturday 20:00 through Sunday 02:00.
			if now >= openMin || now < closeMin {
				return true
			}
		}
	}
	return false
}

// zoneUsable reports whether the IANA identifier resolves to a location.
func zoneUsable(timeZone string) bool {
	if timeZone == "" {
		return false
	}
	_, err := time.LoadLocation(timeZone)
	return err == nil
}
