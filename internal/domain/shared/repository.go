package shared

import (
	"context"
	"time"
)

// Repository is the storage contract shared by every aggregate repository.
// Implementations return ErrNotFound (or a wrapped variant) from FindByID
// when the identifier is unknown.
type Repository[T any] interface {
	FindByID(ctx context.Context, id int64) (*T, error)
	FindAll(ctx context.Context) ([]T, error)
	Save(ctx context.Context, entity *T) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds a range covering every instant of the days from..to.
// from after to is a validation error.
func NewDateRange(from, to time.Time) (DateRange, error) {
	if from.IsZero() || to.IsZero() {
		return DateRange{}, NewValidationError("INVALID_DATE_RANGE", "Both range dates are required")
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location()).
		AddDate(0, 0, 1).Add(-time.Nanosecond)
	if start.After(end) {
		return DateRange{}, NewValidationError("INVALID_DATE_RANGE", "Range start cannot be after range end")
	}
	return DateRange{From: start, To: end}, nil
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}
