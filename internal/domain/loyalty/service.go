package loyalty

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
	ErrNotFound           = errors.New("not found")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrNoCouponAvailable  = errors.New("no coupon available")
)

// Tarifario del programa: 1 punto por cada 100 cobrados, cupón de 10
// a cambio de 50 puntos.
var (
	accrualRate    = decimal.RequireFromString("0.01")
	couponDiscount = decimal.NewFromInt(10)
)

const couponCost int64 = 50

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

// Open crea la cuenta del cliente si no existe. Idempotente.
func (s *Service) Open(ctx context.Context, customerID string) (Account, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Account{}, ErrInvalidInput
	}

	a, err := s.repo.GetByCustomer(ctx, customerID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	now := s.now()
	a = Account{
		CustomerID: customerID,
		Points:     0,
		Coupons:    []Coupon{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (s *Service) Account(ctx context.Context, customerID string) (Account, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return Account{}, ErrInvalidInput
	}
	return s.repo.GetByCustomer(ctx, customerID)
}

// Accrue suma floor(0.01 × charged) puntos y devuelve lo ganado.
// Sin cuenta (pagador sin membresía) es no-op y devuelve 0.
func (s *Service) Accrue(ctx context.Context, customerID string, charged decimal.Decimal) (int64, error) {
	a, err := s.repo.GetByCustomer(ctx, strings.TrimSpace(customerID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	earned := charged.Mul(accrualRate).Floor().IntPart()
	if earned <= 0 {
		return 0, nil
	}

	a.Points += earned
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return 0, err
	}
	return earned, nil
}

// MintCoupon debita 50 puntos y encola un cupón de descuento fijo.
func (s *Service) MintCoupon(ctx context.Context, customerID string) (Coupon, error) {
	a, err := s.repo.GetByCustomer(ctx, strings.TrimSpace(customerID))
	if err != nil {
		return Coupon{}, err
	}

	if a.Points < couponCost {
		return Coupon{}, ErrInsufficientPoints
	}

	now := s.now()
	c := Coupon{
		ID:       uuid.NewString(),
		Discount: couponDiscount,
		MintedAt: now,
	}

	a.Points -= couponCost
	a.Coupons = append(a.Coupons, c)
	a.UpdatedAt = now

	if err := s.repo.Update(ctx, a); err != nil {
		return Coupon{}, err
	}
	return c, nil
}

// PeekCoupon devuelve el cupón más viejo sin consumirlo. El motor de
// settlement lo usa para cotizar el descuento antes de cobrar.
func (s *Service) PeekCoupon(ctx context.Context, customerID string) (Coupon, error) {
	a, err := s.repo.GetByCustomer(ctx, strings.TrimSpace(customerID))
	if err != nil {
		return Coupon{}, err
	}
	if len(a.Coupons) == 0 {
		return Coupon{}, ErrNoCouponAvailable
	}
	return a.Coupons[0], nil
}

// PopCoupon consume el cupón más viejo (FIFO). Una vez consumido no se reusa.
func (s *Service) PopCoupon(ctx context.Context, customerID string) (Coupon, error) {
	a, err := s.repo.GetByCustomer(ctx, strings.TrimSpace(customerID))
	if err != nil {
		return Coupon{}, err
	}
	if len(a.Coupons) == 0 {
		return Coupon{}, ErrNoCouponAvailable
	}

	c := a.Coupons[0]
	a.Coupons = append([]Coupon{}, a.Coupons[1:]...)
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Coupon{}, err
	}
	return c, nil
}
