package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vet-clinic-billing/internal/domain/loyalty"
)

type loyaltyRepo struct {
	mu         sync.RWMutex
	byCustomer map[string]loyalty.Account
}

func NewLoyaltyRepo() loyalty.Repository {
	return &loyaltyRepo{
		byCustomer: make(map[string]loyalty.Account),
	}
}

func (r *loyaltyRepo) Create(ctx context.Context, a loyalty.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.CustomerID) == "" {
		return errors.New("customer id required")
	}
	if _, exists := r.byCustomer[a.CustomerID]; exists {
		return errors.New("account already exists")
	}
	r.byCustomer[a.CustomerID] = a
	return nil
}

func (r *loyaltyRepo) Update(ctx context.Context, a loyalty.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCustomer[a.CustomerID]; !exists {
		return loyalty.ErrNotFound
	}
	r.byCustomer[a.CustomerID] = a
	return nil
}

func (r *loyaltyRepo) GetByCustomer(ctx context.Context, customerID string) (loyalty.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byCustomer[customerID]
	if !ok {
		return loyalty.Account{}, loyalty.ErrNotFound
	}

	// El service recorta/appendea la cola sobre lo que recibe
	a.Coupons = append([]loyalty.Coupon{}, a.Coupons...)
	return a, nil
}
