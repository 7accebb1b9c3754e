package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	notifyadapter "vet-clinic-billing/internal/adapters/notify"
	mem "vet-clinic-billing/internal/adapters/storage/memory"
	pg "vet-clinic-billing/internal/adapters/storage/postgres"
	"vet-clinic-billing/internal/domain/care"
	"vet-clinic-billing/internal/domain/customers"
	"vet-clinic-billing/internal/domain/loyalty"
	"vet-clinic-billing/internal/domain/payments"
	"vet-clinic-billing/internal/domain/settlement"
	"vet-clinic-billing/internal/middleware"
	"vet-clinic-billing/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Log zerolog.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: notifier explícito (tests). Si no viene, se elige por env:
	// NOTIFY_WEBHOOK_URL seteado -> webhook; si no, log.
	Notifier notify.Notifier
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		customersRepo customers.Repository
		careRepo      care.Repository
		loyaltyRepo   loyalty.Repository
		cardsRepo     payments.Repository
		recordsRepo   settlement.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		customersRepo = pg.NewCustomersRepo(db)
		careRepo = pg.NewCareRepo(db)
		loyaltyRepo = pg.NewLoyaltyRepo(db)
		cardsRepo = pg.NewCardsRepo(db)
		recordsRepo = pg.NewRecordsRepo(db)
	} else {
		customersRepo = mem.NewCustomersRepo()
		careRepo = mem.NewCareRepo()
		loyaltyRepo = mem.NewLoyaltyRepo()
		cardsRepo = mem.NewCardsRepo()
		recordsRepo = mem.NewRecordsRepo()
	}

	// Services por módulo
	customersSvc := customers.NewService(customersRepo)
	careSvc := care.NewService(careRepo)
	loyaltySvc := loyalty.NewService(loyaltyRepo)
	paymentsSvc := payments.NewService(cardsRepo)

	notifier := opts.Notifier
	if notifier == nil {
		if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
			if wh, err := notifyadapter.NewWebhookNotifier(url, 5*time.Second); err == nil {
				notifier = wh
			}
		}
	}
	if notifier == nil {
		notifier = notifyadapter.NewLogNotifier(opts.Log)
	}

	engine := settlement.NewEngine(settlement.Deps{
		Customers: customersSvc,
		Care:      careSvc,
		Loyalty:   loyaltySvc,
		Payments:  paymentsSvc,
		Records:   recordsRepo,
		Notifier:  notifier,
		Log:       opts.Log,
	})

	// Rutas por módulo
	customers.RegisterRoutes(r, customersSvc, loyaltySvc)
	care.RegisterRoutes(r, careSvc, customersSvc)
	loyalty.RegisterRoutes(r, loyaltySvc)
	payments.RegisterRoutes(r, paymentsSvc)
	settlement.RegisterRoutes(r, engine)

	return r
}
