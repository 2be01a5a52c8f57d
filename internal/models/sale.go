package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for sale dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	StatusPending   SaleStatus = "pending"
	StatusCompleted SaleStatus = "completed"
	StatusCancelled SaleStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s SaleStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Sale represents a single recorded sale.
type Sale struct {
	// ID is the unique identifier for the sale (UUID format).
	ID string

	// UserID is the owning account. It never changes after creation.
	UserID string

	// ProductName is what was sold.
	ProductName string

	// Amount is the sale value. Never negative.
	Amount float64

	// DateOfSale is the calendar date of the sale, at midnight UTC.
	DateOfSale time.Time

	// Status is the sale's lifecycle state.
	Status SaleStatus

	// CreatedAt is the Unix timestamp when the sale was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last modification.
	UpdatedAt int64
}

// OwnedBy reports whether the sale belongs to the given user ID.
func (s *Sale) OwnedBy(userID string) bool {
	return s.UserID == userID
}

// ParseDate parses a YYYY-MM-DD string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
