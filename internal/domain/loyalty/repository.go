package loyalty

import "context"

type Repository interface {
	Create(ctx context.Context, a Account) error
	Update(ctx context.Context, a Account) error
	GetByCustomer(ctx context.Context, customerID string) (Account, error)
}
