package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/policy"
	"library_management/internal/repositories"
)

// SettingsService manages the Library Settings singleton.
type SettingsService interface {
	Get(ctx context.Context) (*models.LibrarySettings, error)
	Update(ctx context.Context, settings *models.LibrarySettings) (*models.LibrarySettings, error)
	Policy(ctx context.Context) (policy.Policy, error)
	IsOpenAt(ctx context.Context, at time.Time) (bool, error)
}

// DefaultSettings is written the first time the settings are read.
func DefaultSettings() *models.LibrarySettings {
	return &models.LibrarySettings{
		ID:                 models.SettingsID,
		LibraryName:        "Library",
		MaxBooksPerMember:  5,
		DefaultIssuePeriod: 14,
		FinePerDay:         decimal.NewFromInt(2),
		EnableReservations: true,
		EmailNotifications: true,
		MembershipFees:     decimal.Zero,
	}
}

type settingsService struct {
	*core
}

func (s *settingsService) Get(ctx context.Context) (*models.LibrarySettings, error) {
	return s.loadSettings(s.conn(ctx))
}

func (s *settingsService) Update(ctx context.Context, settings *models.LibrarySettings) (*models.LibrarySettings, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	var saved *models.LibrarySettings
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		// The row must exist so Save updates every column in place.
		if _, err := s.loadSettings(tx); err != nil {
			return err
		}
		if err := s.repos.Settings.Save(tx, settings); err != nil {
			return err
		}
		reloaded, err := s.repos.Settings.Get(tx)
		if err != nil {
			return err
		}
		saved = reloaded
		return nil
	})
	if err != nil {
		s.log.WithError(err).Error("UpdateSettings: failed to save library settings")
		return nil, err
	}
	s.log.WithField("library_name", saved.LibraryName).Info("UpdateSettings: library settings saved")
	return saved, nil
}

func (s *settingsService) Policy(ctx context.Context) (policy.Policy, error) {
	return s.loadPolicy(s.conn(ctx))
}

func (s *settingsService) IsOpenAt(ctx context.Context, at time.Time) (bool, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return policy.IsOpenAt(settings.Hours, at), nil
}

// loadSettings reads the singleton, writing the defaults on first use.
func (c *core) loadSettings(db *gorm.DB) (*models.LibrarySettings, error) {
	settings, err := c.repos.Settings.Get(db)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	defaults := DefaultSettings()
	if err := db.Create(defaults).Error; err != nil {
		if repositories.IsUniqueViolation(err) {
			// Someone else created it first.
			return c.repos.Settings.Get(db)
		}
		return nil, err
	}
	c.log.Info("loadSettings: created default library settings")
	return defaults, nil
}

func (c *core) loadPolicy(db *gorm.DB) (policy.Policy, error) {
	settings, err := c.loadSettings(db)
	if err != nil {
		return policy.Policy{}, err
	}
	return policyFrom(settings), nil
}

func policyFrom(s *models.LibrarySettings) policy.Policy {
	return policy.Policy{
		IssuePeriodDays:    s.DefaultIssuePeriod,
		FinePerDay:         s.FinePerDay,
		MaxBooksPerMember:  s.MaxBooksPerMember,
		EnableReservations: s.EnableReservations,
	}
}

func validateSettings(s *models.LibrarySettings) error {
	switch {
	case s.MembershipFees.IsNegative():
		return fmt.Errorf("%w: membership fees cannot be negative", ErrInvalidSettings)
	case s.FinePerDay.IsNegative():
		return fmt.Errorf("%w: fine per day cannot be negative", ErrInvalidSettings)
	case s.DefaultIssuePeriod <= 0:
		return fmt.Errorf("%w: default issue period must be greater than 0 days", ErrInvalidSettings)
	case s.MaxBooksPerMember <= 0:
		return fmt.Errorf("%w: max books per member must be greater than 0", ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(s.Hours))
	for _, h := range s.Hours {
		if !policy.ValidWeekday(h.DayOfWeek) {
			return fmt.Errorf("%w: unknown day of week %q", ErrInvalidSettings, h.DayOfWeek)
		}
		if seen[h.DayOfWeek] {
			return fmt.Errorf("%w: %s is listed more than once", ErrInvalidSettings, h.DayOfWeek)
		}
		seen[h.DayOfWeek] = true
		if h.IsOpen && (h.OpeningTime == nil || h.ClosingTime == nil || *h.ClosingTime <= *h.OpeningTime) {
			return fmt.Errorf("%w: %s needs an opening time before its closing time", ErrInvalidSettings, h.DayOfWeek)
		}
	}
	return nil
}
