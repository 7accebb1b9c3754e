package payments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/customers/{customerID}/cards", func(cr chi.Router) {
		cr.Post("/", registerCardHandler(svc))
		cr.Get("/", listCardsHandler(svc))
		cr.Post("/{cardID}/deposit", depositHandler(svc))
	})
}

type registerCardRequest struct {
	Balance decimal.Decimal `json:"balance"` // saldo inicial, >= 0
}

type depositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type cardResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Balance    string    `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
}

func registerCardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.RegisterCard(r.Context(), chi.URLParam(r, "customerID"), req.Balance)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusCreated, toCardResponse(c))
	}
}

func listCardsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards, err := svc.ListCards(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]cardResponse, 0, len(cards))
		for _, c := range cards {
			out = append(out, toCardResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func depositHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req depositRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Deposit(r.Context(), chi.URLParam(r, "customerID"), chi.URLParam(r, "cardID"), req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, ErrInstrumentNotFound):
				http.Error(w, err.Error(), http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toCardResponse(c))
	}
}

func toCardResponse(c Card) cardResponse {
	return cardResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Balance:    c.Balance.String(),
		CreatedAt:  c.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
