package care

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, b Bundle) error
	// Update reemplaza los items del bundle (append de un nuevo LineItem).
	Update(ctx context.Context, b Bundle) error
	GetByPetAndDate(ctx context.Context, petID string, day time.Time) (Bundle, error)
	ListByPet(ctx context.Context, petID string) ([]Bundle, error)
}
