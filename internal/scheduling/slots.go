package scheduling

import "time"

// GenerateAvailableSlots enumerates the free appointment instants for the given
// day, starting at the working window start and stepping by the slot duration
// up to and including the window end. A candidate is kept when it falls within
// the working hours, is still in the future relative to now and no booked
// instant lies closer than one slot duration to it. The result is ascending.
//
// A window whose start is after its end yields no slots, not an error.
func GenerateAvailableSlots(day time.Time, workingHours WorkingHours, booked []time.Time, now time.Time) []time.Time {
	slots := make([]time.Time, 0)
	startMinutes := clockToMinutes(workingHours.Start)
	endMinutes := clockToMinutes(workingHours.End)
	if startMinutes < 0 || endMinutes < 0 || startMinutes > endMinutes {
		return slots
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	candidate := dayStart.Add(time.Duration(startMinutes) * time.Minute)
	windowEnd := dayStart.Add(time.Duration(endMinutes) * time.Minute)
	for !candidate.After(windowEnd) {
		if IsWithinWorkingHours(candidate, workingHours) && candidate.After(now) && !hasBookingNearby(candidate, booked) {
			slots = append(slots, candidate)
		}
		candidate = candidate.Add(SlotDuration)
	}
	return slots
}

// hasBookingNearby checks if any booked instant lies strictly closer than one
// slot duration to the candidate. A booking exactly one slot away does not
// block the candidate.
func hasBookingNearby(candidate time.Time, booked []time.Time) bool {
	for _, instant := range booked {
		difference := candidate.Sub(instant)
		if difference < 0 {
			difference = -difference
		}
		if difference < SlotDuration {
			return true
		}
	}
	return false
}
