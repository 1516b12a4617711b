package domain

import "time"

// State classifies a repository by the age of its most recent commit.
type State string

const (
	StateActive   State = "Active"
	StateInactive State = "Inactive"
	StateUnknown  State = "Unknown"
)

// InactiveAfterMonths is the elapsed-month threshold at which a repository
// becomes inactive.
const InactiveAfterMonths = 5

// ElapsedMonths counts calendar months between t and now, ignoring the day
// of month. It is negative when t lies in a later month than now.
func ElapsedMonths(t, now time.Time) int {
	t = t.In(now.Location())
	return (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
}

// Classify returns the state of a repository whose last commit happened at
// last. A nil last means no commit is known.
func Classify(last *time.Time, now time.Time) State {
	if last == nil {
		return StateUnknown
	}
	if ElapsedMonths(*last, now) >= InactiveAfterMonths {
		return StateInactive
	}
	return StateActive
}
