package generator

import "errors"

var (
	// ErrNoUnits is returned when a section names no units to cover.
	ErrNoUnits = errors.New("section has no units")
	// ErrNegativeCount is returned for a negative question count.
	ErrNegativeCount = errors.New("question count must not be negative")
)

// Allocation is the number of questions assigned to one unit.
type Allocation struct {
	Unit  string
	Count int
}

// Plan spreads numQuestions across units: every unit gets the floor of the
// even split and the first numQuestions%len(units) units get one more.
// The counts always sum to numQuestions.
func Plan(numQuestions int, units []string) ([]Allocation, error) {
	if len(units) == 0 {
		return nil, ErrNoUnits
	}
	if numQuestions < 0 {
		return nil, ErrNegativeCount
	}

	base := numQuestions / len(units)
	remaining := numQuestions % len(units)

	out := make([]Allocation, len(units))
	for i, u := range units {
		count := base
		if i < remaining {
			count++
		}
		out[i] = Allocation{Unit: u, Count: count}
	}
	return out, nil
}
