package consent

import (
	"time"
)

// Preferences records which cookie categories the visitor has accepted.
// Necessary is reported as always granted and cannot be withdrawn.
type Preferences struct {
	Necessary   bool      `json:"necessary"`
	Analytics   bool      `json:"analytics"`
	Marketing   bool      `json:"marketing"`
	Preferences bool      `json:"preferences"`
	DecidedAt   time.Time `json:"decidedAt"`
}

// DefaultPreferences is the state before the visitor has made a choice.
func DefaultPreferences() Preferences {
	return Preferences{Necessary: true}
}

func AcceptAll(now time.Time) Preferences {
	return Preferences{
		Necessary:   true,
		Analytics:   true,
		Marketing:   true,
		Preferences: true,
		DecidedAt:   now,
	}
}

func RejectAll(now time.Time) Preferences {
	return Preferences{
		Necessary: true,
		DecidedAt: now,
	}
}

func (p Preferences) Decided() bool {
	return !p.DecidedAt.IsZero()
}
