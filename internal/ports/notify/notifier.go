package notify

import (
	"context"
	"time"
)

// Outcome es el resultado de un settlement que se le avisa al cliente.
// O bien terminó liquidado (con recibo) o fue rechazado (con motivo).
type Outcome struct {
	CustomerID string

	Settled bool

	// Solo en liquidados
	PaymentID  string
	FinalPrice string
	Date       time.Time

	// Solo en rechazados
	Reason string
}

// Notifier reenvía el resultado al cliente (email, SMS, webhook...).
// El core no espera confirmación de entrega; los errores se loguean y listo.
type Notifier interface {
	SettlementOutcome(ctx context.Context, o Outcome) error
}
