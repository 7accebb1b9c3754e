package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-clinic-billing/internal/domain/care"
)

type careRepo struct {
	mu   sync.RWMutex
	byID map[string]care.Bundle
	// índice (petID, día) -> bundle id; garantiza un bundle por día
	byPetDay map[string]string
}

func NewCareRepo() care.Repository {
	return &careRepo{
		byID:     make(map[string]care.Bundle),
		byPetDay: make(map[string]string),
	}
}

func petDayKey(petID string, day time.Time) string {
	return petID + "|" + day.Format("2006-01-02")
}

func (r *careRepo) Create(ctx context.Context, b care.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("bundle id required")
	}
	key := petDayKey(b.PetID, b.Date)
	if _, exists := r.byPetDay[key]; exists {
		return errors.New("bundle already exists for pet and date")
	}

	r.byID[b.ID] = b
	r.byPetDay[key] = b.ID
	return nil
}

func (r *careRepo) Update(ctx context.Context, b care.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[b.ID]; !exists {
		return care.ErrNotFound
	}
	r.byID[b.ID] = b
	return nil
}

func (r *careRepo) GetByPetAndDate(ctx context.Context, petID string, day time.Time) (care.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPetDay[petDayKey(petID, day)]
	if !ok {
		return care.Bundle{}, care.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *careRepo) ListByPet(ctx context.Context, petID string) ([]care.Bundle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]care.Bundle, 0)
	for _, b := range r.byID {
		if b.PetID == petID {
			out = append(out, b)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
