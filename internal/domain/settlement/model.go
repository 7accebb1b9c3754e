package settlement

import (
	"time"

	"vet-clinic-billing/internal/domain/care"
	"vet-clinic-billing/internal/domain/payments"

	"github.com/shopspring/decimal"
)

// PaymentRecord es el recibo de un settlement exitoso. Inmutable: una vez
// creado se appendea al historial del cliente y no se toca más.
type PaymentRecord struct {
	ID         string // 8 hex, estilo uuid4().hex[:8]
	CustomerID string

	InstrumentKind payments.Kind
	FinalPrice     decimal.Decimal

	// Resumen por mascota: nombre -> tags de tipo de los bundles cobrados.
	// Un bundle sin items aparece con lista vacía.
	Summary map[string][]care.ItemKind

	Date         time.Time // día calendario liquidado
	PointsEarned int64

	CreatedAt time.Time
}
