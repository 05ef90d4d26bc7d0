package basis

import (
	"fmt"
	"strings"

	"github.com/etnz/basis/date"
)

// Frequency is the schedule step of a periodic investment plan.
type Frequency int

const (
	Weekly Frequency = iota
	Biweekly
	Monthly
)

func (f Frequency) String() string {
	switch f {
	case Weekly:
		return "weekly"
	case Biweekly:
		return "biweekly"
	case Monthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool { return f >= Weekly && f <= Monthly }

// Nth returns the n-th scheduled date after start, start being the 0-th.
//
// Monthly steps keep the day of month of start, clamped to the end of shorter
// months, so a plan started on the 31st comes back to the 31st when it can.
func (f Frequency) Nth(start date.Date, n int) date.Date {
	switch f {
	case Weekly:
		return start.Add(7 * n)
	case Biweekly:
		return start.Add(14 * n)
	case Monthly:
		return start.AddMonth(n)
	default:
		panic(fmt.Sprintf("unknown frequency %d", int(f)))
	}
}

// Schedule returns the dates of the plan from start to end, both included.
func (f Frequency) Schedule(start, end date.Date) []date.Date {
	var dates []date.Date
	for n := 0; ; n++ {
		d := f.Nth(start, n)
		if d.After(end) {
			return dates
		}
		dates = append(dates, d)
	}
}

// ParseFrequency parses "weekly", "biweekly" or "monthly".
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly", "week":
		return Weekly, nil
	case "biweekly", "fortnightly":
		return Biweekly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidArgument, s)
	}
}

func (f Frequency) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Frequency) UnmarshalText(text []byte) error {
	v, err := ParseFrequency(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
