package customers

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier define los niveles de membresía soportados.
// @Enum silver, gold, platinum
type Tier string

const (
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// DefaultRate devuelve la tasa de descuento del tier.
// Platinum comparte tasa con Gold (tarifario vigente de la clínica).
func (t Tier) DefaultRate() (decimal.Decimal, bool) {
	switch t {
	case TierSilver:
		return decimal.RequireFromString("0.05"), true
	case TierGold, TierPlatinum:
		return decimal.RequireFromString("0.10"), true
	default:
		return decimal.Decimal{}, false
	}
}

// Member es la capacidad de membresía opcional de un Customer.
// El saldo de puntos y la cola de cupones viven en el ledger de loyalty,
// acá solo queda el tier y su tasa.
type Member struct {
	Tier         Tier
	DiscountRate decimal.Decimal
	Since        time.Time
}

// Customer representa un cliente registrado en la clínica.
type Customer struct {
	ID    string
	Name  string
	Phone string
	Email string

	Member *Member // nil = cliente sin membresía

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pet pertenece a exactamente un Customer.
type Pet struct {
	ID         string
	CustomerID string

	Name    string
	Species string // dog, cat, etc.

	CreatedAt time.Time
}
