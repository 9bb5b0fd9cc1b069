package settings

import (
	"context"
	"errors"

	"github.com/oakmontlabs/timepunch/internal/repository"
)

var (
	ErrInvalidRate     = errors.New("hourly rate must be zero or positive")
	ErrInvalidTextSize = errors.New("text size must be small, medium, or large")
)

const defaultTextSize = "medium"

var validTextSizes = map[string]bool{
	"small":  true,
	"medium": true,
	"large":  true,
}

type Store interface {
	repository.SettingsRepository
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the user's settings, creating the defaults on first
// access: zero hourly rate, medium text.
func (s *Service) Get(ctx context.Context, userID string) (*repository.Settings, error) {
	existing, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	created, err := s.store.CreateSettings(ctx, repository.Settings{
		UserID:     userID,
		HourlyRate: 0,
		TextSize:   defaultTextSize,
	})
	if err != nil {
		// A concurrent first access may have created the row already.
		if errors.Is(err, repository.ErrDuplicate) {
			return s.store.GetSettings(ctx, userID)
		}
		return nil, err
	}
	return created, nil
}

// Update patches the provided fields; nil leaves a field untouched.
func (s *Service) Update(ctx context.Context, userID string, hourlyRate *float64, textSize *string) (*repository.Settings, error) {
	if hourlyRate != nil && *hourlyRate < 0 {
		return nil, ErrInvalidRate
	}
	if textSize != nil && !validTextSizes[*textSize] {
		return nil, ErrInvalidTextSize
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.UpdateSettings(ctx, userID, hourlyRate, textSize)
}
