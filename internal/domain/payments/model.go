package payments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind define los instrumentos de pago soportados.
// Conjunto cerrado; Charge hace match exhaustivo.
// @Enum card, code
type Kind string

const (
	KindCard Kind = "card" // tarjeta con saldo almacenado
	KindCode Kind = "code" // código de un solo uso, monto exacto
)

func (k Kind) Valid() bool {
	switch k {
	case KindCard, KindCode:
		return true
	default:
		return false
	}
}

// Card es un instrumento con saldo almacenado. El saldo solo se mueve
// por depósitos y débitos, y nunca queda negativo.
type Card struct {
	ID         string
	CustomerID string

	Balance decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}
