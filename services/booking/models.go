package booking

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Booking is one transfer reservation. Reference is the customer-facing
// identifier: 4 digits, 1 lowercase letter, 1 digit, a fixed contract shared
// with the client-side validator.
type Booking struct {
	gorm.Model
	Reference       string    `json:"reference" gorm:"uniqueIndex;not null"`
	UserID          uint      `json:"user_id" gorm:"index;not null"`
	PickupLocation  string    `json:"pickup_location" gorm:"not null"`
	DropoffLocation string    `json:"dropoff_location" gorm:"not null"`
	ScheduledAt     time.Time `json:"scheduled_at" gorm:"not null"`
	Passengers      int       `json:"passengers" gorm:"default:1"`
	Status          Status    `json:"status" gorm:"default:pending"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency" gorm:"default:EUR"`
}

func (Booking) TableName() string {
	return "bookings"
}

var referencePattern = regexp.MustCompile(`^\d{4}[a-z]\d{1}$`)

func ValidReference(ref string) bool {
	return referencePattern.MatchString(ref)
}
