package schedule

import (
	"fmt"
	"iter"
	"time"
)

// DefaultSlotStep is the bookable slot length used across the clinic network.
const DefaultSlotStep = 30 * time.Minute

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with no date attached. It is the unit the
// availability engine works in: availability rules, shifts and appointment
// times are all expressed as times of day on an implied date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS" (seconds are discarded,
// Postgres TIME columns render with them).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinuteOfDay returns minutes since midnight, the engine's sort key.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.MinuteOfDay() < o.MinuteOfDay()
}

func timeOfDayFromMinutes(m int) TimeOfDay {
	m = ((m % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay{Hour: m / 60, Minute: m % 60}
}

// Interval is a half-open [Start, End) window of a single implied day.
// Whether the window rolls over midnight is decided once, at construction,
// instead of being re-derived wherever the window is consumed.
type Interval struct {
	Start         TimeOfDay
	End           TimeOfDay
	SpansMidnight bool
}

// NewInterval builds an interval from two clock times. An end numerically
// before the start means the window continues into the following day
// (22:00-02:00 is an evening window running past midnight). Equal start and
// end is the empty window, not a 24h one.
func NewInterval(start, end TimeOfDay) Interval {
	return Interval{
		Start:         start,
		End:           end,
		SpansMidnight: end.MinuteOfDay() < start.MinuteOfDay(),
	}
}

// Slots expands the interval into bookable slot start times at a fixed
// cadence, beginning exactly at Start and stopping strictly before End.
// A midnight-spanning window only yields its same-day portion: 22:00-02:00
// produces 22:00 through 23:30 and nothing at or after 00:00, because under
// the time-of-day-only representation a "00:00" slot would be ambiguous
// between the requested day and the rollover day. The slice past midnight
// belongs to the following day's own computation.
// The sequence is lazy and can be ranged repeatedly.
func (iv Interval) Slots(step time.Duration) iter.Seq[TimeOfDay] {
	stepMinutes := int(step / time.Minute)
	return func(yield func(TimeOfDay) bool) {
		if stepMinutes <= 0 {
			return
		}
		end := iv.End.MinuteOfDay()
		if iv.SpansMidnight {
			end = minutesPerDay
		}
		for m := iv.Start.MinuteOfDay(); m < end; m += stepMinutes {
			if !yield(timeOfDayFromMinutes(m)) {
				return
			}
		}
	}
}

// isoWeekday maps a date to ISO-8601 weekday numbering: 1=Monday .. 7=Sunday.
// Availability rules are stored against this numbering.
func isoWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
