package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-clinic-billing/internal/domain/customers"
)

type customersRepo struct {
	mu       sync.RWMutex
	byID     map[string]customers.Customer
	petsByID map[string]customers.Pet
}

func NewCustomersRepo() customers.Repository {
	return &customersRepo{
		byID:     make(map[string]customers.Customer),
		petsByID: make(map[string]customers.Pet),
	}
}

func (r *customersRepo) Create(ctx context.Context, c customers.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("customer id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("customer already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *customersRepo) Update(ctx context.Context, c customers.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return customers.ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *customersRepo) GetByID(ctx context.Context, id string) (customers.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return customers.Customer{}, customers.ErrNotFound
	}
	return c, nil
}

func (r *customersRepo) AddPet(ctx context.Context, p customers.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.petsByID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.petsByID[p.ID] = p
	return nil
}

func (r *customersRepo) GetPetByName(ctx context.Context, customerID, name string) (customers.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.petsByID {
		if p.CustomerID == customerID && strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return customers.Pet{}, customers.ErrNotFound
}

func (r *customersRepo) ListPets(ctx context.Context, customerID string) ([]customers.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]customers.Pet, 0)
	for _, p := range r.petsByID {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}

	// Orden estable por created_at asc (consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
