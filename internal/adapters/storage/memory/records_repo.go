package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"vet-clinic-billing/internal/domain/settlement"
)

type recordsRepo struct {
	mu         sync.RWMutex
	byCustomer map[string][]settlement.PaymentRecord
}

func NewRecordsRepo() settlement.Repository {
	return &recordsRepo{
		byCustomer: make(map[string][]settlement.PaymentRecord),
	}
}

func (r *recordsRepo) Append(ctx context.Context, rec settlement.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.CustomerID) == "" {
		return errors.New("record id and customer id required")
	}
	r.byCustomer[rec.CustomerID] = append(r.byCustomer[rec.CustomerID], rec)
	return nil
}

func (r *recordsRepo) ListByCustomer(ctx context.Context, customerID string) ([]settlement.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Ya está en orden de append; se devuelve copia
	return append([]settlement.PaymentRecord{}, r.byCustomer[customerID]...), nil
}
