package interaction

import (
	"fmt"
	"time"

	"meetpoint/models"
)

// Availability windows, server-side interpretation.
const (
	morningStartHour = 6
	morningEndHour   = 12
	eveningStartHour = 16
	eveningEndHour   = 22
)

func isWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// validateProposedTime enforces the same-day rule and the counterparty's
// declared daily window. The counterparty is whoever is being asked to meet
// by this proposal. Users without a declared slot skip the window check.
// Day and hour are read in server-local time, matching how slots were
// declared.
func validateProposedTime(proposed, now time.Time, counterparty *models.User) error {
	p := proposed.Local()
	n := now.Local()

	if p.Year() != n.Year() || p.Month() != n.Month() || p.Day() != n.Day() {
		return newValidationError(CodeNotToday, "You can only propose a time for today.")
	}

	slot := counterparty.WeekdaysAvailability
	if isWeekend(p) {
		slot = counterparty.WeekendsAvailability
	}

	hour := p.Hour()
	switch slot {
	case models.SlotMorning:
		if hour < morningStartHour || hour >= morningEndHour {
			return newValidationError(CodeOutsideAvailability,
				fmt.Sprintf("Proposed time must be in the MORNING window (%02d:00-%02d:00).", morningStartHour, morningEndHour))
		}
	case models.SlotEvening:
		if hour < eveningStartHour || hour >= eveningEndHour {
			return newValidationError(CodeOutsideAvailability,
				fmt.Sprintf("Proposed time must be in the EVENING window (%02d:00-%02d:00).", eveningStartHour, eveningEndHour))
		}
	}
	return nil
}
