package utils

import "time"

// SecondsBetween returns the seconds elapsed from from to to. A clock that
// stepped backwards yields 0 rather than a negative duration.
func SecondsBetween(from time.Time, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Seconds()
}
