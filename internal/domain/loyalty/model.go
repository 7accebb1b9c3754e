package loyalty

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon es de un solo uso y de monto fijo; solo se acuña vía el ledger
// y se consume en orden FIFO dentro de la cuenta.
type Coupon struct {
	ID       string
	Discount decimal.Decimal
	MintedAt time.Time
}

// Account es el ledger de lealtad de un cliente: saldo de puntos (nunca
// negativo) y cola FIFO de cupones. Existe solo para clientes con membresía.
type Account struct {
	CustomerID string

	Points  int64
	Coupons []Coupon // orden de acuñado = orden de consumo

	CreatedAt time.Time
	UpdatedAt time.Time
}
