package care

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-clinic-billing/internal/domain/customers"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service, customersSvc *customers.Service) {
	r.Route("/customers/{customerID}/pets/{petName}/services", func(sr chi.Router) {
		sr.Post("/", recordItemHandler(svc, customersSvc))
		sr.Get("/", listBundlesHandler(svc, customersSvc))
	})
}

type recordItemRequest struct {
	Type  string          `json:"type"` // grooming|boarding|medical
	Price decimal.Decimal `json:"price"`

	Room     string `json:"room,omitempty"`
	Days     int    `json:"days,omitempty"`
	DoctorID string `json:"doctor_id,omitempty"`

	Date string `json:"date,omitempty"` // YYYY-MM-DD, default hoy
}

type lineItemResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Price    string `json:"price"`
	Room     string `json:"room,omitempty"`
	Days     int    `json:"days,omitempty"`
	DoctorID string `json:"doctor_id,omitempty"`
}

type bundleResponse struct {
	ID    string             `json:"id"`
	PetID string             `json:"pet_id"`
	Date  string             `json:"date"`
	Items []lineItemResponse `json:"items"`
	Total string             `json:"total"`
}

func recordItemHandler(svc *Service, customersSvc *customers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pet, ok := resolvePet(w, r, customersSvc)
		if !ok {
			return
		}

		var req recordItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		at := time.Time{}
		if strings.TrimSpace(req.Date) != "" {
			t, err := time.Parse("2006-01-02", req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			at = t
		}

		b, err := svc.RecordItem(r.Context(), pet.ID, at, RecordItemInput{
			Kind:     ItemKind(strings.ToLower(strings.TrimSpace(req.Type))),
			Price:    req.Price,
			Room:     req.Room,
			Days:     req.Days,
			DoctorID: req.DoctorID,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toBundleResponse(b))
	}
}

func listBundlesHandler(svc *Service, customersSvc *customers.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pet, ok := resolvePet(w, r, customersSvc)
		if !ok {
			return
		}

		// ?date=YYYY-MM-DD filtra a un solo día
		if q := strings.TrimSpace(r.URL.Query().Get("date")); q != "" {
			day, err := time.Parse("2006-01-02", q)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			b, err := svc.BundleForDay(r.Context(), pet.ID, day)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					writeJSON(w, http.StatusOK, []bundleResponse{})
					return
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			writeJSON(w, http.StatusOK, []bundleResponse{toBundleResponse(b)})
			return
		}

		items, err := svc.ListByPet(r.Context(), pet.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]bundleResponse, 0, len(items))
		for _, b := range items {
			out = append(out, toBundleResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// resolvePet valida (customer, pet) y corta con 404 si falta alguno.
func resolvePet(w http.ResponseWriter, r *http.Request, customersSvc *customers.Service) (customers.Pet, bool) {
	customerID := chi.URLParam(r, "customerID")
	petName := chi.URLParam(r, "petName")

	pet, err := customersSvc.GetPet(r.Context(), customerID, petName)
	if err != nil {
		http.Error(w, "pet not found", http.StatusNotFound)
		return customers.Pet{}, false
	}
	return pet, true
}

func toBundleResponse(b Bundle) bundleResponse {
	items := make([]lineItemResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, lineItemResponse{
			ID:       it.ID,
			Type:     string(it.Kind),
			Price:    it.Price.String(),
			Room:     it.Room,
			Days:     it.Days,
			DoctorID: it.DoctorID,
		})
	}
	return bundleResponse{
		ID:    b.ID,
		PetID: b.PetID,
		Date:  b.Date.Format("2006-01-02"),
		Items: items,
		Total: b.TotalPrice().String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
