package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-billing/internal/domain/payments"
)

type cardsRepo struct {
	mu   sync.RWMutex
	byID map[string]payments.Card
}

func NewCardsRepo() payments.Repository {
	return &cardsRepo{
		byID: make(map[string]payments.Card),
	}
}

func (r *cardsRepo) Create(ctx context.Context, c payments.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("card id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("card already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *cardsRepo) Update(ctx context.Context, c payments.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return payments.ErrInstrumentNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *cardsRepo) GetByID(ctx context.Context, id string) (payments.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return payments.Card{}, payments.ErrInstrumentNotFound
	}
	return c, nil
}

func (r *cardsRepo) ListByCustomer(ctx context.Context, customerID string) ([]payments.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]payments.Card, 0)
	for _, c := range r.byID {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}

	// Orden de registro (created_at asc); "primera tarjeta" depende de esto
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
