package notify

import (
	"context"

	"vet-clinic-billing/internal/ports/notify"

	"github.com/rs/zerolog"
)

// LogNotifier escribe el resultado al log. Es el default en dev,
// cuando no hay NOTIFY_WEBHOOK_URL configurada.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(l zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

func (n *LogNotifier) SettlementOutcome(ctx context.Context, o notify.Outcome) error {
	if o.Settled {
		n.log.Info().
			Str("customer_id", o.CustomerID).
			Str("payment_id", o.PaymentID).
			Str("final_price", o.FinalPrice).
			Msg("settlement settled")
		return nil
	}

	n.log.Info().
		Str("customer_id", o.CustomerID).
		Str("reason", o.Reason).
		Msg("settlement rejected")
	return nil
}
