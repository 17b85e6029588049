package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/internal/retry"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidReference = errors.New("invalid booking reference")
	ErrPastSchedule     = errors.New("scheduled time must be in the future")
)

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

type CreateInput struct {
	UserID          uint
	PickupLocation  string
	DropoffLocation string
	ScheduledAt     time.Time
	Passengers      int
	PriceCents      int64
	Currency        string
}

func (s *Service) Create(input CreateInput) (*Booking, error) {
	if input.ScheduledAt.Before(time.Now()) {
		return nil, ErrPastSchedule
	}
	if input.Passengers <= 0 {
		input.Passengers = 1
	}
	if input.Currency == "" {
		input.Currency = "EUR"
	}

	booking := &Booking{
		UserID:          input.UserID,
		PickupLocation:  input.PickupLocation,
		DropoffLocation: input.DropoffLocation,
		ScheduledAt:     input.ScheduledAt,
		Passengers:      input.Passengers,
		Status:          StatusPending,
		PriceCents:      input.PriceCents,
		Currency:        input.Currency,
	}

	// References collide rarely (2.6M space); retry a few times on the
	// unique index rather than coordinating.
	for attempt := 0; attempt < 5; attempt++ {
		ref, err := generateReference()
		if err != nil {
			return nil, err
		}
		booking.Reference = ref

		err = s.db.Create(booking).Error
		if err == nil {
			if s.logger != nil {
				s.logger.Info("booking created",
					zap.String("reference", booking.Reference),
					zap.Uint("user_id", booking.UserID))
			}
			return booking, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create booking: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to allocate a unique booking reference")
}

// ListForUser is the dashboard fetch; transient storage failures are retried
// with the same classified policy the profile fetch uses.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Booking, error) {
	policy := retry.Policy{
		MaxAttempts:    s.config.Retry.MaxAttempts,
		InitialDelay:   s.config.Retry.InitialDelay,
		AttemptTimeout: s.config.Retry.AttemptTimeout,
	}

	var bookings []Booking
	err := retry.Do(ctx, policy, auth.ClassifyError, func(ctx context.Context) error {
		return s.db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("scheduled_at DESC").
			Find(&bookings).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) GetByReference(userID uint, reference string) (*Booking, error) {
	if !ValidReference(reference) {
		return nil, ErrInvalidReference
	}

	var booking Booking
	err := s.db.Where("reference = ? AND user_id = ?", reference, userID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	return &booking, nil
}

func (s *Service) Cancel(userID uint, reference string) (*Booking, error) {
	booking, err := s.GetByReference(userID, reference)
	if err != nil {
		return nil, err
	}

	if booking.Status == StatusCancelled {
		return booking, nil
	}

	if err := s.db.Model(booking).Update("status", StatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	booking.Status = StatusCancelled
	return booking, nil
}
