package settlement

import "context"

type Repository interface {
	// Append agrega el recibo al historial del cliente (append-only).
	Append(ctx context.Context, rec PaymentRecord) error
	ListByCustomer(ctx context.Context, customerID string) ([]PaymentRecord, error)
}
