package settlement

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-clinic-billing/internal/domain/care"
	"vet-clinic-billing/internal/domain/customers"
	"vet-clinic-billing/internal/domain/loyalty"
	"vet-clinic-billing/internal/domain/payments"
	"vet-clinic-billing/internal/ports/notify"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNothingToSettle = errors.New("nothing to settle")
	ErrNotAMember      = errors.New("not a member")
)

// Engine corre el ciclo completo de cobro de un cliente:
// Collecting -> Pricing -> Discounting -> Charging -> Accruing -> Recorded.
// Todo o nada: hasta que el cobro no pasa, no se toca ningún ledger
// (los descuentos se cotizan leyendo, el cupón se consume recién después).
type Engine struct {
	customers *customers.Service
	care      *care.Service
	loyalty   *loyalty.Service
	payments  *payments.Service
	repo      Repository
	notifier  notify.Notifier

	log   zerolog.Logger
	now   func() time.Time
	locks *customerLocks
}

type Deps struct {
	Customers *customers.Service
	Care      *care.Service
	Loyalty   *loyalty.Service
	Payments  *payments.Service
	Records   Repository
	Notifier  notify.Notifier
	Log       zerolog.Logger
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		customers: d.Customers,
		care:      d.Care,
		loyalty:   d.Loyalty,
		payments:  d.Payments,
		repo:      d.Records,
		notifier:  d.Notifier,
		log:       d.Log,
		now:       time.Now,
		locks:     newCustomerLocks(),
	}
}

type Input struct {
	CustomerID   string
	Kind         payments.Kind
	InstrumentID string           // opcional (card): id de una tarjeta del cliente
	Tendered     *decimal.Decimal // requerido para code
	UseCoupon    bool
}

// Settle liquida todos los bundles de hoy del cliente. Devuelve el recibo
// o un error tipado; ningún fallo deja efectos parciales en puntos,
// cupones ni saldos.
func (e *Engine) Settle(ctx context.Context, in Input) (PaymentRecord, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" || !in.Kind.Valid() {
		return PaymentRecord{}, ErrInvalidInput
	}

	unlock := e.locks.lock(customerID)
	defer unlock()

	rec, err := e.settle(ctx, customerID, in)
	e.emit(ctx, customerID, rec, err)
	return rec, err
}

func (e *Engine) settle(ctx context.Context, customerID string, in Input) (PaymentRecord, error) {
	customer, err := e.customers.GetByID(ctx, customerID)
	if err != nil {
		return PaymentRecord{}, err
	}

	// Collecting: bundles de hoy de todas las mascotas del cliente.
	today := care.Day(e.now())
	pets, err := e.customers.ListPets(ctx, customerID)
	if err != nil {
		return PaymentRecord{}, err
	}

	summary := make(map[string][]care.ItemKind)
	bundles := make([]care.Bundle, 0, len(pets))
	for _, p := range pets {
		b, err := e.care.BundleForDay(ctx, p.ID, today)
		if err != nil {
			if errors.Is(err, care.ErrNotFound) {
				continue
			}
			return PaymentRecord{}, err
		}
		bundles = append(bundles, b)
		summary[p.Name] = b.ItemKinds()
	}
	if len(bundles) == 0 {
		return PaymentRecord{}, ErrNothingToSettle
	}

	// Pricing
	sum := decimal.Zero
	for _, b := range bundles {
		sum = sum.Add(b.TotalPrice())
	}

	// Discounting: primero tasa de membresía, después cupón,
	// ambos sobre el total sin descontar (no compuestos).
	memberDiscount := decimal.Zero
	if customer.Member != nil {
		memberDiscount = customer.Member.DiscountRate.Mul(sum)
	}

	couponDiscount := decimal.Zero
	if in.UseCoupon {
		if customer.Member == nil {
			return PaymentRecord{}, ErrNotAMember
		}
		// Peek, no pop: el cupón recién se consume si el cobro pasa.
		coupon, err := e.loyalty.PeekCoupon(ctx, customerID)
		if err != nil {
			// Miembro sin cuenta de lealtad cuenta como cola vacía.
			if errors.Is(err, loyalty.ErrNotFound) {
				return PaymentRecord{}, loyalty.ErrNoCouponAvailable
			}
			return PaymentRecord{}, err
		}
		couponDiscount = coupon.Discount
	}

	finalPrice := sum.Sub(memberDiscount).Sub(couponDiscount)
	if !finalPrice.IsPositive() {
		return PaymentRecord{}, ErrNothingToSettle
	}

	// Charging: el error del instrumento se propaga tal cual.
	if err := e.payments.Charge(ctx, payments.ChargeInput{
		CustomerID:   customerID,
		Kind:         in.Kind,
		InstrumentID: in.InstrumentID,
		Amount:       finalPrice,
		Tendered:     in.Tendered,
	}); err != nil {
		return PaymentRecord{}, err
	}

	// El cobro pasó: ahora sí se consume el cupón y se acreditan puntos.
	// Con el lock por cliente tomado, el peek de arriba sigue siendo el head.
	// Límite del todo-o-nada: un fallo de acá en adelante deja el débito
	// hecho y ningún recibo; el cobro no se compensa.
	if in.UseCoupon {
		if _, err := e.loyalty.PopCoupon(ctx, customerID); err != nil {
			return PaymentRecord{}, err
		}
	}

	var earned int64
	if customer.Member != nil {
		earned, err = e.loyalty.Accrue(ctx, customerID, finalPrice)
		if err != nil {
			return PaymentRecord{}, err
		}
	}

	// Recorded
	rec := PaymentRecord{
		ID:             newPaymentID(),
		CustomerID:     customerID,
		InstrumentKind: in.Kind,
		FinalPrice:     finalPrice,
		Summary:        summary,
		Date:           today,
		PointsEarned:   earned,
		CreatedAt:      e.now(),
	}
	if err := e.repo.Append(ctx, rec); err != nil {
		return PaymentRecord{}, err
	}

	e.log.Info().
		Str("customer_id", customerID).
		Str("payment_id", rec.ID).
		Str("final_price", finalPrice.String()).
		Int64("points_earned", earned).
		Msg("settlement recorded")

	return rec, nil
}

func (e *Engine) History(ctx context.Context, customerID string) ([]PaymentRecord, error) {
	return e.repo.ListByCustomer(ctx, strings.TrimSpace(customerID))
}

// emit avisa el resultado sin esperar confirmación; un notifier caído
// no afecta el settlement.
func (e *Engine) emit(ctx context.Context, customerID string, rec PaymentRecord, err error) {
	if e.notifier == nil {
		return
	}

	o := notify.Outcome{CustomerID: customerID}
	if err != nil {
		o.Reason = err.Error()
	} else {
		o.Settled = true
		o.PaymentID = rec.ID
		o.FinalPrice = rec.FinalPrice.String()
		o.Date = rec.Date
	}

	if nerr := e.notifier.SettlementOutcome(ctx, o); nerr != nil {
		e.log.Warn().Err(nerr).Str("customer_id", customerID).Msg("notify failed")
	}
}

func newPaymentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
