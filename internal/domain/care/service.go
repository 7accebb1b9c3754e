package care

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordItemInput struct {
	Kind  ItemKind
	Price decimal.Decimal

	Room     string // boarding
	Days     int    // boarding
	DoctorID string // medical
}

// RecordItem ubica (o crea) el bundle de (pet, día) y le agrega el item.
// Para una mascota válida siempre tiene éxito; el segundo servicio del
// mismo día se apila sobre el bundle existente, nunca abre otro.
func (s *Service) RecordItem(ctx context.Context, petID string, at time.Time, in RecordItemInput) (Bundle, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Bundle{}, ErrInvalidInput
	}
	if !in.Kind.Valid() {
		return Bundle{}, ErrInvalidInput
	}
	if in.Price.IsNegative() {
		return Bundle{}, ErrInvalidInput
	}
	switch in.Kind {
	case ItemBoarding:
		if strings.TrimSpace(in.Room) == "" || in.Days <= 0 {
			return Bundle{}, ErrInvalidInput
		}
	case ItemMedical:
		if strings.TrimSpace(in.DoctorID) == "" {
			return Bundle{}, ErrInvalidInput
		}
	}

	if at.IsZero() {
		at = s.now()
	}
	day := Day(at)

	item := LineItem{
		ID:         uuid.NewString(),
		Kind:       in.Kind,
		Price:      in.Price,
		Room:       strings.TrimSpace(in.Room),
		Days:       in.Days,
		DoctorID:   strings.TrimSpace(in.DoctorID),
		RecordedAt: s.now(),
	}

	b, err := s.repo.GetByPetAndDate(ctx, petID, day)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Bundle{}, err
		}

		now := s.now()
		b = Bundle{
			ID:        uuid.NewString(),
			PetID:     petID,
			Date:      day,
			Items:     []LineItem{item},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Create(ctx, b); err != nil {
			return Bundle{}, err
		}
		return b, nil
	}

	b.Items = append(b.Items, item)
	b.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, b); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// BundleForDay devuelve el bundle de (pet, día) o ErrNotFound.
func (s *Service) BundleForDay(ctx context.Context, petID string, at time.Time) (Bundle, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return Bundle{}, ErrInvalidInput
	}
	return s.repo.GetByPetAndDate(ctx, petID, Day(at))
}

func (s *Service) ListByPet(ctx context.Context, petID string) ([]Bundle, error) {
	return s.repo.ListByPet(ctx, strings.TrimSpace(petID))
}
