package loyalty

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byCustomer map[string]Account
}

func newTestRepo() *testRepo {
	return &testRepo{byCustomer: map[string]Account{}}
}

func (r *testRepo) Create(ctx context.Context, a Account) error {
	if a.CustomerID == "" {
		return errors.New("repo: customer id required")
	}
	if _, ok := r.byCustomer[a.CustomerID]; ok {
		return errors.New("repo: already exists")
	}
	r.byCustomer[a.CustomerID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Account) error {
	if _, ok := r.byCustomer[a.CustomerID]; !ok {
		return ErrNotFound
	}
	r.byCustomer[a.CustomerID] = a
	return nil
}

func (r *testRepo) GetByCustomer(ctx context.Context, customerID string) (Account, error) {
	a, ok := r.byCustomer[customerID]
	if !ok {
		return Account{}, ErrNotFound
	}
	a.Coupons = append([]Coupon{}, a.Coupons...)
	return a, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Open_Idempotent(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a1, err := svc.Open(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if a1.Points != 0 || len(a1.Coupons) != 0 {
		t.Fatalf("expected empty account, got %+v", a1)
	}

	// segunda apertura no pisa nada
	repo.byCustomer["cust-1"] = Account{CustomerID: "cust-1", Points: 30}
	a2, err := svc.Open(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("Open #2 error: %v", err)
	}
	if a2.Points != 30 {
		t.Fatalf("expected existing account untouched, got points=%d", a2.Points)
	}
}

func TestService_Accrue_FloorsAtWholePoints(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	_ = repo.Create(context.Background(), Account{CustomerID: "cust-1"})

	// 950 cobrados -> floor(9.5) = 9 puntos
	earned, err := svc.Accrue(context.Background(), "cust-1", decimal.NewFromInt(950))
	if err != nil {
		t.Fatalf("Accrue error: %v", err)
	}
	if earned != 9 {
		t.Fatalf("expected 9 points earned, got %d", earned)
	}
	if got := repo.byCustomer["cust-1"].Points; got != 9 {
		t.Fatalf("expected balance 9, got %d", got)
	}

	// menos de 100 no suma nada
	earned, err = svc.Accrue(context.Background(), "cust-1", decimal.NewFromInt(99))
	if err != nil {
		t.Fatalf("Accrue #2 error: %v", err)
	}
	if earned != 0 {
		t.Fatalf("expected 0 points for 99 charged, got %d", earned)
	}
}

func TestService_Accrue_NoAccount_IsNoop(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	earned, err := svc.Accrue(context.Background(), "nobody", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("Accrue error: %v", err)
	}
	if earned != 0 {
		t.Fatalf("expected 0 points without account, got %d", earned)
	}
}

func TestService_MintCoupon_RequiresFiftyPoints(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	_ = repo.Create(context.Background(), Account{CustomerID: "cust-1", Points: 49})

	_, err := svc.MintCoupon(context.Background(), "cust-1")
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints at 49, got %v", err)
	}
	if got := repo.byCustomer["cust-1"].Points; got != 49 {
		t.Fatalf("expected points untouched on failed mint, got %d", got)
	}

	// con 50 justos alcanza y queda en 0
	repo.byCustomer["cust-1"] = Account{CustomerID: "cust-1", Points: 50}
	c, err := svc.MintCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("MintCoupon error: %v", err)
	}
	if !c.Discount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected coupon discount 10, got %s", c.Discount)
	}

	a := repo.byCustomer["cust-1"]
	if a.Points != 0 {
		t.Fatalf("expected 0 points after mint, got %d", a.Points)
	}
	if len(a.Coupons) != 1 || a.Coupons[0].ID != c.ID {
		t.Fatalf("expected coupon queued, got %+v", a.Coupons)
	}
}

func TestService_Coupons_FIFO(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)
	_ = repo.Create(context.Background(), Account{CustomerID: "cust-1", Points: 100})

	c1, err := svc.MintCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("MintCoupon #1 error: %v", err)
	}
	c2, err := svc.MintCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("MintCoupon #2 error: %v", err)
	}

	// Peek no consume
	peeked, err := svc.PeekCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("PeekCoupon error: %v", err)
	}
	if peeked.ID != c1.ID {
		t.Fatalf("expected oldest coupon on peek, got %s", peeked.ID)
	}
	if got := len(repo.byCustomer["cust-1"].Coupons); got != 2 {
		t.Fatalf("expected 2 coupons after peek, got %d", got)
	}

	// Pop consume en orden de acuñado
	popped, err := svc.PopCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("PopCoupon error: %v", err)
	}
	if popped.ID != c1.ID {
		t.Fatalf("expected c1 popped first, got %s", popped.ID)
	}
	popped, err = svc.PopCoupon(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("PopCoupon #2 error: %v", err)
	}
	if popped.ID != c2.ID {
		t.Fatalf("expected c2 popped second, got %s", popped.ID)
	}

	_, err = svc.PopCoupon(context.Background(), "cust-1")
	if !errors.Is(err, ErrNoCouponAvailable) {
		t.Fatalf("expected ErrNoCouponAvailable on empty queue, got %v", err)
	}
}
