package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-billing/internal/platform/httpclient"
	"vet-clinic-billing/internal/ports/notify"
)

// WebhookNotifier postea el resultado como JSON a un endpoint externo
// (NOTIFY_WEBHOOK_URL). Quien entrega al cliente final es ese sistema.
type WebhookNotifier struct {
	client *httpclient.Client
	url    string
}

func NewWebhookNotifier(webhookURL string, timeout time.Duration) (*WebhookNotifier, error) {
	webhookURL = strings.TrimSpace(webhookURL)
	if webhookURL == "" {
		return nil, errors.New("webhook url required")
	}
	return &WebhookNotifier{
		client: httpclient.New(timeout),
		url:    webhookURL,
	}, nil
}

type outcomePayload struct {
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"` // settled|rejected

	PaymentID  string `json:"payment_id,omitempty"`
	FinalPrice string `json:"final_price,omitempty"`
	Date       string `json:"date,omitempty"`

	Reason string `json:"reason,omitempty"`
}

func (n *WebhookNotifier) SettlementOutcome(ctx context.Context, o notify.Outcome) error {
	p := outcomePayload{
		CustomerID: o.CustomerID,
		Status:     "rejected",
		Reason:     o.Reason,
	}
	if o.Settled {
		p.Status = "settled"
		p.PaymentID = o.PaymentID
		p.FinalPrice = o.FinalPrice
		p.Date = o.Date.Format("2006-01-02")
		p.Reason = ""
	}

	return n.client.PostJSON(ctx, n.url, p, nil)
}
