package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

// TimeSlot is a same-day interval in minutes since midnight, half-open [Start, End).
type TimeSlot struct {
	Day   models.WeekDay
	Start int
	End   int
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("time %q must be HH:MM", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("time %q has invalid hour", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("time %q has invalid minute", raw)
	}
	return h*60 + m, nil
}

// NewTimeSlot parses a day and clock bounds. Start must precede End.
func NewTimeSlot(day models.WeekDay, start, end string) (TimeSlot, error) {
	if !day.Valid() {
		return TimeSlot{}, fmt.Errorf("unknown day %q", day)
	}
	s, err := ParseClock(start)
	if err != nil {
		return TimeSlot{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeSlot{}, err
	}
	if s >= e {
		return TimeSlot{}, fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return TimeSlot{Day: day, Start: s, End: e}, nil
}

// Overlaps reports whether two slots share any minute. Touching endpoints do not overlap.
func (t TimeSlot) Overlaps(o TimeSlot) bool {
	return t.Day == o.Day && t.Start < o.End && t.End > o.Start
}

// HasTimeConflict reports whether candidate overlaps any existing schedule.
// Rows with unparseable times are treated as conflicting so they cannot hide a clash.
func HasTimeConflict(existing []models.OfferedCourseClassSchedule, candidate TimeSlot) bool {
	for _, sched := range existing {
		slot, err := NewTimeSlot(sched.DayOfWeek, sched.StartTime, sched.EndTime)
		if err != nil {
			if sched.DayOfWeek == candidate.Day {
				return true
			}
			continue
		}
		if slot.Overlaps(candidate) {
			return true
		}
	}
	return false
}
