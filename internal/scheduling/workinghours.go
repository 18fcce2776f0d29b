// Package scheduling contains handlers, services and structures used to book,
// cancel and list medical appointments within the doctors' working hours.
package scheduling

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SlotDurationMinutes is the fixed granularity at which appointments may start.
const SlotDurationMinutes = 30

// SlotDuration is SlotDurationMinutes expressed as a duration.
const SlotDuration = SlotDurationMinutes * time.Minute

var clockRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidClockTime checks if the given value is a valid HH:MM time of day.
func IsValidClockTime(value string) bool {
	return clockRegex.MatchString(value)
}

// clockToMinutes converts a HH:MM value into minutes since midnight. Callers
// must supply a validated value, a malformed one yields -1.
func clockToMinutes(value string) int {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	return hours*60 + minutes
}

// IsWithinWorkingHours checks if the given instant falls inside the working
// window on a day that is not a day off. Both window bounds are inclusive, so
// an appointment exactly at closing time is permitted.
func IsWithinWorkingHours(instant time.Time, workingHours WorkingHours) bool {
	dayName := instant.Weekday().String()
	for _, dayOff := range workingHours.DaysOff {
		if strings.EqualFold(dayName, dayOff) {
			return false
		}
	}
	start := clockToMinutes(workingHours.Start)
	end := clockToMinutes(workingHours.End)
	instantMinutes := instant.Hour()*60 + instant.Minute()
	return instantMinutes >= start && instantMinutes <= end
}

// IsSlotAligned checks if the given instant starts on the slot grid.
func IsSlotAligned(instant time.Time) bool {
	return instant.Minute()%SlotDurationMinutes == 0
}
