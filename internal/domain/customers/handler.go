package customers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vet-clinic-billing/internal/domain/loyalty"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, loyaltySvc *loyalty.Service) {
	r.Route("/customers", func(cr chi.Router) {
		cr.Post("/", createCustomerHandler(svc))
		cr.Get("/{customerID}", getCustomerHandler(svc))

		cr.Post("/{customerID}/pets", addPetHandler(svc))
		cr.Get("/{customerID}/pets", listPetsHandler(svc))

		// Membresía: capacidad Member + apertura de cuenta loyalty
		cr.Post("/{customerID}/membership", enrollHandler(svc, loyaltySvc))
	})
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type memberResponse struct {
	Tier         Tier      `json:"tier"`
	DiscountRate string    `json:"discount_rate"`
	Since        time.Time `json:"since"`
}

type customerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Email     string          `json:"email"`
	Member    *memberResponse `json:"member,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type petResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Name       string    `json:"name"`
	Species    string    `json:"species"`
	CreatedAt  time.Time `json:"created_at"`
}

type addPetRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
}

type enrollRequest struct {
	Tier string `json:"tier"` // silver|gold|platinum
}

func createCustomerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCustomerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Name:  req.Name,
			Phone: req.Phone,
			Email: req.Email,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toCustomerResponse(c))
	}
}

func getCustomerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toCustomerResponse(c))
	}
}

func addPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.AddPet(r.Context(), chi.URLParam(r, "customerID"), AddPetInput{
			Name:    req.Name,
			Species: req.Species,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "customer not found", http.StatusNotFound)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListPets(r.Context(), chi.URLParam(r, "customerID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func enrollHandler(svc *Service, loyaltySvc *loyalty.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		customerID := chi.URLParam(r, "customerID")
		c, err := svc.Enroll(r.Context(), customerID, Tier(req.Tier))
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "customer not found", http.StatusNotFound)
			case errors.Is(err, ErrUnknownTier), errors.Is(err, ErrAlreadyMember):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// Abrir la cuenta de puntos/cupones junto con la membresía.
		if _, err := loyaltySvc.Open(r.Context(), customerID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toCustomerResponse(c))
	}
}

func toCustomerResponse(c Customer) customerResponse {
	out := customerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
	}
	if c.Member != nil {
		out.Member = &memberResponse{
			Tier:         c.Member.Tier,
			DiscountRate: c.Member.DiscountRate.String(),
			Since:        c.Member.Since,
		}
	}
	return out
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		Name:       p.Name,
		Species:    p.Species,
		CreatedAt:  p.CreatedAt,
	}
}

// writeJSON está duplicado a propósito en los handlers de cada módulo;
// todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
