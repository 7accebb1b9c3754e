package loyalty

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/customers/{customerID}/loyalty", func(lr chi.Router) {
		lr.Get("/", getAccountHandler(svc))
		lr.Post("/coupons", mintCouponHandler(svc))
	})
}

type couponResponse struct {
	ID       string    `json:"id"`
	Discount string    `json:"discount"`
	MintedAt time.Time `json:"minted_at"`
}

type accountResponse struct {
	CustomerID string           `json:"customer_id"`
	Points     int64            `json:"points"`
	Coupons    []couponResponse `json:"coupons"`
}

func getAccountHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Account(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "no loyalty account", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

func mintCouponHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.MintCoupon(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "no loyalty account", http.StatusNotFound)
			case errors.Is(err, ErrInsufficientPoints):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, toCouponResponse(c))
	}
}

func toAccountResponse(a Account) accountResponse {
	coupons := make([]couponResponse, 0, len(a.Coupons))
	for _, c := range a.Coupons {
		coupons = append(coupons, toCouponResponse(c))
	}
	return accountResponse{
		CustomerID: a.CustomerID,
		Points:     a.Points,
		Coupons:    coupons,
	}
}

func toCouponResponse(c Coupon) couponResponse {
	return couponResponse{
		ID:       c.ID,
		Discount: c.Discount.String(),
		MintedAt: c.MintedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
