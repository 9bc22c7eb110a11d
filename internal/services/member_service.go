package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"library_management/internal/models"
	"library_management/internal/policy"
	"library_management/internal/repositories"
)

// membershipTermDays is the default length of a new membership.
const membershipTermDays = 365

// MemberService manages library members. Issued-book and fine counters are
// always derived from the transaction table.
type MemberService interface {
	CreateMember(ctx context.Context, member *models.LibraryMember) (*models.LibraryMember, error)
	UpdateMember(ctx context.Context, id uuid.UUID, changes *models.LibraryMember) (*models.LibraryMember, error)
	GetMember(ctx context.Context, id uuid.UUID) (*models.LibraryMember, error)
	ListMembers(ctx context.Context) ([]models.LibraryMember, error)
	RefreshStats(ctx context.Context, id uuid.UUID) (*models.LibraryMember, error)
}

type memberService struct {
	*core
}

func (s *memberService) CreateMember(ctx context.Context, member *models.LibraryMember) (*models.LibraryMember, error) {
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		settings, err := s.loadSettings(tx)
		if err != nil {
			return err
		}
		s.applyMemberDefaults(member, settings)
		if err := validateMember(member); err != nil {
			return err
		}
		member.ID = uuid.Nil
		member.CurrentBooksIssued = 0
		member.TotalFines = decimal.Zero
		if err := s.repos.Members.Create(tx, member); err != nil {
			if repositories.IsUniqueViolation(err) {
				s.log.WithField("email", member.EmailAddress()).Warn("CreateMember: email already registered")
				return ErrDuplicate
			}
			s.log.WithError(err).Error("CreateMember: failed to create member")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"member_id": member.ID,
		"name":      member.FullName(),
	}).Info("CreateMember: created member")
	return member, nil
}

// UpdateMember saves status, contact and limit changes, then recomputes the
// derived counters.
func (s *memberService) UpdateMember(ctx context.Context, id uuid.UUID, changes *models.LibraryMember) (*models.LibraryMember, error) {
	var member *models.LibraryMember
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		member, err = s.repos.Members.GetByID(tx, id)
		if err != nil {
			return notFound(err, ErrMemberNotFound)
		}

		member.FirstName = changes.FirstName
		member.LastName = changes.LastName
		member.Email = normalizeEmail(changes.Email)
		member.Phone = changes.Phone
		member.Address = changes.Address
		if changes.MemberType != "" {
			member.MemberType = changes.MemberType
		}
		if changes.MembershipStatus != "" {
			member.MembershipStatus = changes.MembershipStatus
		}
		if changes.MembershipStartDate != nil {
			member.MembershipStartDate = changes.MembershipStartDate
		}
		if changes.MembershipEndDate != nil {
			member.MembershipEndDate = changes.MembershipEndDate
		}
		if changes.MaxBooksAllowed > 0 {
			member.MaxBooksAllowed = changes.MaxBooksAllowed
		}
		if err := validateMember(member); err != nil {
			return err
		}
		if err := s.recomputeMemberStats(tx, member); err != nil {
			return err
		}
		if err := s.repos.Members.Update(tx, member); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrDuplicate
			}
			s.log.WithError(err).WithField("member_id", id).Error("UpdateMember: failed to save member")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("member_id", id).Info("UpdateMember: updated member")
	return member, nil
}

func (s *memberService) GetMember(ctx context.Context, id uuid.UUID) (*models.LibraryMember, error) {
	member, err := s.repos.Members.GetByID(s.conn(ctx), id)
	if err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	return member, nil
}

func (s *memberService) ListMembers(ctx context.Context) ([]models.LibraryMember, error) {
	return s.repos.Members.List(s.conn(ctx))
}

func (s *memberService) RefreshStats(ctx context.Context, id uuid.UUID) (*models.LibraryMember, error) {
	var member *models.LibraryMember
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		member, err = s.refreshMember(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *memberService) applyMemberDefaults(m *models.LibraryMember, settings *models.LibrarySettings) {
	if m.MembershipStartDate == nil {
		today := s.today()
		m.MembershipStartDate = &today
	}
	if m.MembershipEndDate == nil {
		end := policy.AddDays(*m.MembershipStartDate, membershipTermDays)
		m.MembershipEndDate = &end
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = models.MembershipStatusActive
	}
	if m.MemberType == "" {
		m.MemberType = models.MemberTypeStudent
	}
	if m.MaxBooksAllowed <= 0 {
		m.MaxBooksAllowed = settings.MaxBooksPerMember
	}
	m.Email = normalizeEmail(m.Email)
}

// normalizeEmail maps a blank address to nil so the unique index ignores it.
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateMember(m *models.LibraryMember) error {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	if m.FirstName == "" || m.LastName == "" {
		return ErrMemberNameRequired
	}
	if !m.MembershipStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMemberStatus, m.MembershipStatus)
	}
	if !m.MemberType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMemberType, m.MemberType)
	}
	if m.MembershipStartDate != nil && m.MembershipEndDate != nil &&
		m.MembershipEndDate.Before(*m.MembershipStartDate) {
		return ErrInvalidMembershipDate
	}
	return nil
}
