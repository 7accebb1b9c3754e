package care

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem es un servicio individual ya prestado. Inmutable una vez creado.
// Room/Days solo aplican a boarding; DoctorID solo a medical.
type LineItem struct {
	ID   string
	Kind ItemKind

	Price decimal.Decimal

	Room     string
	Days     int
	DoctorID string

	RecordedAt time.Time
}

// Bundle agrupa los servicios de una mascota en un día calendario.
// Invariante: a lo sumo un Bundle por (pet, día); la fecha no cambia
// después de creado y el bundle nunca se borra.
type Bundle struct {
	ID    string
	PetID string
	Date  time.Time // día calendario normalizado (medianoche UTC)

	Items []LineItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPrice suma el precio de todos los items. Función pura del contenido;
// un bundle sin items suma cero.
func (b Bundle) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range b.Items {
		total = total.Add(it.Price)
	}
	return total
}

// ItemKinds devuelve los tags de tipo en orden de registro
// (es lo que va al resumen por mascota del recibo).
func (b Bundle) ItemKinds() []ItemKind {
	out := make([]ItemKind, 0, len(b.Items))
	for _, it := range b.Items {
		out = append(out, it.Kind)
	}
	return out
}

// Day normaliza un instante al día calendario en UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
