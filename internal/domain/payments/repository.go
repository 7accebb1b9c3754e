package payments

import "context"

type Repository interface {
	Create(ctx context.Context, c Card) error
	Update(ctx context.Context, c Card) error
	GetByID(ctx context.Context, id string) (Card, error)
	// ListByCustomer devuelve las tarjetas en orden de registro.
	ListByCustomer(ctx context.Context, customerID string) ([]Card, error)
}
