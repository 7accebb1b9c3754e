package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAmountMismatch     = errors.New("amount mismatch")
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

func (s *Service) RegisterCard(ctx context.Context, customerID string, opening decimal.Decimal) (Card, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" || opening.IsNegative() {
		return Card{}, ErrInvalidInput
	}

	now := s.now()
	c := Card{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Balance:    opening,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Card{}, err
	}
	return c, nil
}

func (s *Service) Deposit(ctx context.Context, customerID, cardID string, amount decimal.Decimal) (Card, error) {
	if !amount.IsPositive() {
		return Card{}, ErrInvalidInput
	}

	c, err := s.resolveCard(ctx, customerID, cardID)
	if err != nil {
		return Card{}, err
	}

	c.Balance = c.Balance.Add(amount)
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Card{}, err
	}
	return c, nil
}

func (s *Service) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	return s.repo.ListByCustomer(ctx, strings.TrimSpace(customerID))
}

type ChargeInput struct {
	CustomerID   string
	Kind         Kind
	InstrumentID string           // opcional para card (default: primera tarjeta)
	Amount       decimal.Decimal  // a cobrar
	Tendered     *decimal.Decimal // requerido para code
}

// Charge valida y debita el instrumento.
// - card: debita Amount si balance >= Amount; ErrInsufficientFunds si no.
// - code: sin estado; exige Tendered == Amount exacto, ErrAmountMismatch si no.
// Los fallos son resultados de negocio: no se reintenta nada.
func (s *Service) Charge(ctx context.Context, in ChargeInput) error {
	if !in.Amount.IsPositive() {
		return ErrInvalidInput
	}

	switch in.Kind {
	case KindCard:
		c, err := s.resolveCard(ctx, in.CustomerID, in.InstrumentID)
		if err != nil {
			return err
		}
		if c.Balance.LessThan(in.Amount) {
			return ErrInsufficientFunds
		}
		c.Balance = c.Balance.Sub(in.Amount)
		c.UpdatedAt = s.now()
		return s.repo.Update(ctx, c)

	case KindCode:
		if in.Tendered == nil || !in.Tendered.Equal(in.Amount) {
			return ErrAmountMismatch
		}
		return nil

	default:
		return ErrInvalidInput
	}
}

// resolveCard busca la tarjeta pedida, o la primera registrada si no se
// indicó id. Un id que no existe o que pertenece a otro cliente es
// ErrInstrumentNotFound, igual que un cliente sin tarjetas.
func (s *Service) resolveCard(ctx context.Context, customerID, cardID string) (Card, error) {
	customerID = strings.TrimSpace(customerID)
	cardID = strings.TrimSpace(cardID)
	if customerID == "" {
		return Card{}, ErrInvalidInput
	}

	if cardID != "" {
		c, err := s.repo.GetByID(ctx, cardID)
		if err != nil || c.CustomerID != customerID {
			return Card{}, ErrInstrumentNotFound
		}
		return c, nil
	}

	cards, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return Card{}, err
	}
	if len(cards) == 0 {
		return Card{}, ErrInstrumentNotFound
	}
	return cards[0], nil
}
