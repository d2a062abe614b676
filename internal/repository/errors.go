package repository

import "errors"

var (
	// ErrCapacityReached is returned when a circle or event has no free seat left.
	ErrCapacityReached = errors.New("capacity reached")
	// ErrDuplicate is returned when a unique user action already exists.
	ErrDuplicate = errors.New("duplicate entry")
)

func normalizeLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
