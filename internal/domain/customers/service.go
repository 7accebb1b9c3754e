package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyMember = errors.New("already a member")
	ErrUnknownTier   = errors.New("unknown tier")
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

type CreateInput struct {
	Name  string
	Phone string
	Email string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Customer{}, ErrInvalidInput
	}

	now := s.now()
	c := Customer{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Customer{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

type AddPetInput struct {
	Name    string
	Species string
}

func (s *Service) AddPet(ctx context.Context, customerID string, in AddPetInput) (Pet, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" || strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}

	// El dueño tiene que existir antes de colgarle mascotas.
	if _, err := s.repo.GetByID(ctx, customerID); err != nil {
		return Pet{}, err
	}

	p := Pet{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Name:       strings.TrimSpace(in.Name),
		Species:    strings.TrimSpace(in.Species),
		CreatedAt:  s.now(),
	}

	if err := s.repo.AddPet(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetPet(ctx context.Context, customerID, name string) (Pet, error) {
	customerID = strings.TrimSpace(customerID)
	name = strings.TrimSpace(name)
	if customerID == "" || name == "" {
		return Pet{}, ErrInvalidInput
	}
	return s.repo.GetPetByName(ctx, customerID, name)
}

func (s *Service) ListPets(ctx context.Context, customerID string) ([]Pet, error) {
	return s.repo.ListPets(ctx, strings.TrimSpace(customerID))
}

// Enroll agrega la capacidad Member al cliente con la tasa del tier.
// La cuenta de puntos/cupones se abre aparte en loyalty (lo coordina el handler).
func (s *Service) Enroll(ctx context.Context, customerID string, tier Tier) (Customer, error) {
	c, err := s.GetByID(ctx, customerID)
	if err != nil {
		return Customer{}, err
	}
	if c.Member != nil {
		return Customer{}, ErrAlreadyMember
	}

	rate, ok := tier.DefaultRate()
	if !ok {
		return Customer{}, ErrUnknownTier
	}

	now := s.now()
	c.Member = &Member{
		Tier:         tier,
		DiscountRate: rate,
		Since:        now,
	}
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}
