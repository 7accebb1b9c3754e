package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-billing/internal/domain/customers"
	"vet-clinic-billing/internal/domain/loyalty"
	"vet-clinic-billing/internal/domain/payments"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, eng *Engine) {
	r.Post("/customers/{customerID}/settlements", settleHandler(eng))
	r.Get("/customers/{customerID}/payments", listPaymentsHandler(eng))
}

type settleRequest struct {
	PaymentKind  string           `json:"payment_kind"` // card|code
	InstrumentID string           `json:"instrument_id,omitempty"`
	Tendered     *decimal.Decimal `json:"tendered,omitempty"` // requerido para code
	UseCoupon    bool             `json:"use_coupon"`
}

type recordResponse struct {
	ID             string              `json:"id"`
	CustomerID     string              `json:"customer_id"`
	InstrumentKind string              `json:"instrument_kind"`
	FinalPrice     string              `json:"final_price"`
	Summary        map[string][]string `json:"summary"`
	Date           string              `json:"date"`
	PointsEarned   int64               `json:"points_earned"`
	CreatedAt      time.Time           `json:"created_at"`
}

func settleHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		kind := payments.Kind(strings.ToLower(strings.TrimSpace(req.PaymentKind)))
		if !kind.Valid() {
			http.Error(w, "payment_kind must be card or code", http.StatusBadRequest)
			return
		}
		if kind == payments.KindCode && req.Tendered == nil {
			http.Error(w, "tendered is required for code payments", http.StatusBadRequest)
			return
		}

		rec, err := eng.Settle(r.Context(), Input{
			CustomerID:   chi.URLParam(r, "customerID"),
			Kind:         kind,
			InstrumentID: req.InstrumentID,
			Tendered:     req.Tendered,
			UseCoupon:    req.UseCoupon,
		})
		if err != nil {
			writeFailure(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRecordResponse(rec))
	}
}

func listPaymentsHandler(eng *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := eng.History(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// writeFailure mapea la taxonomía de errores a HTTP. El motivo viaja
// textual al cliente, que lo muestra tal cual.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, customers.ErrNotFound), errors.Is(err, payments.ErrInstrumentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNotAMember), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNothingToSettle),
		errors.Is(err, loyalty.ErrNoCouponAvailable),
		errors.Is(err, payments.ErrInsufficientFunds),
		errors.Is(err, payments.ErrAmountMismatch):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toRecordResponse(rec PaymentRecord) recordResponse {
	summary := make(map[string][]string, len(rec.Summary))
	for pet, kinds := range rec.Summary {
		tags := make([]string, 0, len(kinds))
		for _, k := range kinds {
			tags = append(tags, string(k))
		}
		summary[pet] = tags
	}
	return recordResponse{
		ID:             rec.ID,
		CustomerID:     rec.CustomerID,
		InstrumentKind: string(rec.InstrumentKind),
		FinalPrice:     rec.FinalPrice.String(),
		Summary:        summary,
		Date:           rec.Date.Format("2006-01-02"),
		PointsEarned:   rec.PointsEarned,
		CreatedAt:      rec.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
