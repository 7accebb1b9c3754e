package settlement_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	mem "vet-clinic-billing/internal/adapters/storage/memory"
	"vet-clinic-billing/internal/domain/care"
	"vet-clinic-billing/internal/domain/customers"
	"vet-clinic-billing/internal/domain/loyalty"
	"vet-clinic-billing/internal/domain/payments"
	"vet-clinic-billing/internal/domain/settlement"
	"vet-clinic-billing/internal/ports/notify"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// -------------------------
// Fixture
// -------------------------

type fixture struct {
	customers *customers.Service
	care      *care.Service
	loyalty   *loyalty.Service
	payments  *payments.Service
	engine    *settlement.Engine
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		customers: customers.NewService(mem.NewCustomersRepo()),
		care:      care.NewService(mem.NewCareRepo()),
		loyalty:   loyalty.NewService(mem.NewLoyaltyRepo()),
		payments:  payments.NewService(mem.NewCardsRepo()),
		notifier:  &recordingNotifier{},
	}
	f.engine = settlement.NewEngine(settlement.Deps{
		Customers: f.customers,
		Care:      f.care,
		Loyalty:   f.loyalty,
		Payments:  f.payments,
		Records:   mem.NewRecordsRepo(),
		Notifier:  f.notifier,
		Log:       zerolog.Nop(),
	})
	return f
}

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []notify.Outcome
}

func (n *recordingNotifier) SettlementOutcome(ctx context.Context, o notify.Outcome) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, o)
	return nil
}

func (n *recordingNotifier) last(t *testing.T) notify.Outcome {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.outcomes) == 0 {
		t.Fatalf("expected at least one outcome emitted")
	}
	return n.outcomes[len(n.outcomes)-1]
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newCustomerWithPet crea cliente + mascota y deja servicios de hoy cargados.
func (f *fixture) newCustomerWithPet(t *testing.T, petName string, prices ...string) (customers.Customer, customers.Pet) {
	t.Helper()
	ctx := context.Background()

	c, err := f.customers.Create(ctx, customers.CreateInput{Name: "Ana"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	p, err := f.customers.AddPet(ctx, c.ID, customers.AddPetInput{Name: petName, Species: "dog"})
	if err != nil {
		t.Fatalf("add pet: %v", err)
	}
	for _, price := range prices {
		_, err := f.care.RecordItem(ctx, p.ID, time.Now(), care.RecordItemInput{
			Kind:  care.ItemGrooming,
			Price: dec(price),
		})
		if err != nil {
			t.Fatalf("record item: %v", err)
		}
	}
	return c, p
}

func (f *fixture) enroll(t *testing.T, customerID string, tier customers.Tier) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.customers.Enroll(ctx, customerID, tier); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := f.loyalty.Open(ctx, customerID); err != nil {
		t.Fatalf("open loyalty account: %v", err)
	}
}

// -------------------------
// Tests
// -------------------------

func TestEngine_Settle_MemberCard_DiscountsAndAccrues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "300", "700") // total 1000
	f.enroll(t, c.ID, customers.TierSilver)               // 0.05

	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("1000")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
	})
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}

	// 1000 - 5% = 950
	if !rec.FinalPrice.Equal(dec("950")) {
		t.Fatalf("expected final price 950, got %s", rec.FinalPrice)
	}
	// floor(950 * 0.01) = 9
	if rec.PointsEarned != 9 {
		t.Fatalf("expected 9 points earned, got %d", rec.PointsEarned)
	}
	if len(rec.ID) != 8 {
		t.Fatalf("expected 8-char payment id, got %q", rec.ID)
	}

	kinds, ok := rec.Summary["Milo"]
	if !ok || len(kinds) != 2 {
		t.Fatalf("expected summary with 2 items for Milo, got %#v", rec.Summary)
	}

	// el saldo quedó debitado
	cards, _ := f.payments.ListCards(ctx, c.ID)
	if !cards[0].Balance.Equal(dec("50")) {
		t.Fatalf("expected card balance 50, got %s", cards[0].Balance)
	}

	// los puntos quedaron acreditados
	a, err := f.loyalty.Account(ctx, c.ID)
	if err != nil {
		t.Fatalf("loyalty account: %v", err)
	}
	if a.Points != 9 {
		t.Fatalf("expected 9 points on account, got %d", a.Points)
	}

	// quedó en el historial
	history, err := f.engine.History(ctx, c.ID)
	if err != nil {
		t.Fatalf("History error: %v", err)
	}
	if len(history) != 1 || history[0].ID != rec.ID {
		t.Fatalf("expected 1 record in history, got %#v", history)
	}

	out := f.notifier.last(t)
	if !out.Settled || out.PaymentID != rec.ID {
		t.Fatalf("expected settled outcome emitted, got %+v", out)
	}
}

func TestEngine_Settle_NonMember_NoDiscountNoPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "1000")
	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("1000")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
	})
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if !rec.FinalPrice.Equal(dec("1000")) {
		t.Fatalf("expected full price 1000, got %s", rec.FinalPrice)
	}
	if rec.PointsEarned != 0 {
		t.Fatalf("expected 0 points for non-member, got %d", rec.PointsEarned)
	}
}

func TestEngine_Settle_FailedCharge_LeavesLedgersUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "1000")
	f.enroll(t, c.ID, customers.TierSilver)

	// puntos para acuñar un cupón: floor(10000 * 0.01) = 100
	if _, err := f.loyalty.Accrue(ctx, c.ID, dec("10000")); err != nil {
		t.Fatalf("accrue seed: %v", err)
	}
	if _, err := f.loyalty.MintCoupon(ctx, c.ID); err != nil {
		t.Fatalf("mint coupon: %v", err)
	}

	card, err := f.payments.RegisterCard(ctx, c.ID, dec("10"))
	if err != nil {
		t.Fatalf("register card: %v", err)
	}

	_, err = f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if !errors.Is(err, payments.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// nada se movió: ni cupón, ni puntos, ni saldo, ni historial
	a, _ := f.loyalty.Account(ctx, c.ID)
	if len(a.Coupons) != 1 {
		t.Fatalf("expected coupon still queued after failed charge, got %d", len(a.Coupons))
	}
	if a.Points != 50 {
		t.Fatalf("expected points untouched (50), got %d", a.Points)
	}
	cards, _ := f.payments.ListCards(ctx, c.ID)
	if !cards[0].Balance.Equal(dec("10")) {
		t.Fatalf("expected balance untouched, got %s", cards[0].Balance)
	}
	history, _ := f.engine.History(ctx, c.ID)
	if len(history) != 0 {
		t.Fatalf("expected empty history after failed charge, got %d", len(history))
	}
	if out := f.notifier.last(t); out.Settled {
		t.Fatalf("expected rejected outcome, got %+v", out)
	}

	// con fondos, el mismo pedido pasa y consume el cupón
	if _, err := f.payments.Deposit(ctx, c.ID, card.ID, dec("1000")); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if err != nil {
		t.Fatalf("Settle retry error: %v", err)
	}
	// 1000 - 50 (5%) - 10 (cupón) = 940
	if !rec.FinalPrice.Equal(dec("940")) {
		t.Fatalf("expected final price 940, got %s", rec.FinalPrice)
	}
	a, _ = f.loyalty.Account(ctx, c.ID)
	if len(a.Coupons) != 0 {
		t.Fatalf("expected coupon consumed, got %d queued", len(a.Coupons))
	}
}

func TestEngine_Settle_NothingToSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo") // sin servicios hoy
	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("100")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	_, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
	})
	if !errors.Is(err, settlement.ErrNothingToSettle) {
		t.Fatalf("expected ErrNothingToSettle, got %v", err)
	}
}

func TestEngine_Settle_CouponRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "100")
	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("100")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	_, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if !errors.Is(err, settlement.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember, got %v", err)
	}

	// miembro sin cupones acuñados
	f.enroll(t, c.ID, customers.TierGold)
	_, err = f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if !errors.Is(err, loyalty.ErrNoCouponAvailable) {
		t.Fatalf("expected ErrNoCouponAvailable, got %v", err)
	}
}

func TestEngine_Settle_DiscountedToNothing_KeepsCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// total chico: 10 - 1 (10%) - 10 (cupón) = -1
	c, _ := f.newCustomerWithPet(t, "Milo", "10")
	f.enroll(t, c.ID, customers.TierGold)

	if _, err := f.loyalty.Accrue(ctx, c.ID, dec("10000")); err != nil {
		t.Fatalf("accrue seed: %v", err)
	}
	if _, err := f.loyalty.MintCoupon(ctx, c.ID); err != nil {
		t.Fatalf("mint coupon: %v", err)
	}

	_, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if !errors.Is(err, settlement.ErrNothingToSettle) {
		t.Fatalf("expected ErrNothingToSettle below zero, got %v", err)
	}

	// el cupón solo se miró, no se consumió; los puntos tampoco se movieron
	a, _ := f.loyalty.Account(ctx, c.ID)
	if len(a.Coupons) != 1 {
		t.Fatalf("expected coupon still queued, got %d", len(a.Coupons))
	}
	if a.Points != 50 {
		t.Fatalf("expected points untouched (50), got %d", a.Points)
	}
	history, _ := f.engine.History(ctx, c.ID)
	if len(history) != 0 {
		t.Fatalf("expected no record, got %d", len(history))
	}
}

func TestEngine_Settle_CouponsConsumedInMintOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "1000")
	f.enroll(t, c.ID, customers.TierGold) // 0.10

	// dos cupones acuñados en orden
	if _, err := f.loyalty.Accrue(ctx, c.ID, dec("10000")); err != nil {
		t.Fatalf("accrue seed: %v", err)
	}
	c1, err := f.loyalty.MintCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("mint #1: %v", err)
	}
	c2, err := f.loyalty.MintCoupon(ctx, c.ID)
	if err != nil {
		t.Fatalf("mint #2: %v", err)
	}

	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("2000")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	// 1000 - 100 (10%) - 10 (cupón) = 890
	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if err != nil {
		t.Fatalf("Settle #1 error: %v", err)
	}
	if !rec.FinalPrice.Equal(dec("890")) {
		t.Fatalf("expected final price 890, got %s", rec.FinalPrice)
	}

	// se consumió el más viejo; queda el segundo a la cabeza
	a, _ := f.loyalty.Account(ctx, c.ID)
	if len(a.Coupons) != 1 || a.Coupons[0].ID != c2.ID {
		t.Fatalf("expected %s consumed and %s left, got %#v", c1.ID, c2.ID, a.Coupons)
	}

	// el bundle sigue ahí (no hay marca de pagado); segunda liquidación
	// del mismo día consume el segundo cupón
	if _, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	}); err != nil {
		t.Fatalf("Settle #2 error: %v", err)
	}
	a, _ = f.loyalty.Account(ctx, c.ID)
	if len(a.Coupons) != 0 {
		t.Fatalf("expected empty coupon queue, got %d", len(a.Coupons))
	}
}

func TestEngine_Settle_Code_ExactTenderOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "1000")
	f.enroll(t, c.ID, customers.TierSilver) // final = 950

	off := dec("949")
	_, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCode,
		Tendered:   &off,
	})
	if !errors.Is(err, payments.ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch for 949, got %v", err)
	}
	history, _ := f.engine.History(ctx, c.ID)
	if len(history) != 0 {
		t.Fatalf("expected no record after mismatch, got %d", len(history))
	}

	exact := dec("950")
	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCode,
		Tendered:   &exact,
	})
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if rec.InstrumentKind != payments.KindCode {
		t.Fatalf("expected code payment recorded, got %s", rec.InstrumentKind)
	}
	if rec.PointsEarned != 9 {
		t.Fatalf("expected 9 points on code payment, got %d", rec.PointsEarned)
	}
}

func TestEngine_Settle_MultiplePets_OneReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, _ := f.newCustomerWithPet(t, "Milo", "400")
	p2, err := f.customers.AddPet(ctx, c.ID, customers.AddPetInput{Name: "Luna", Species: "cat"})
	if err != nil {
		t.Fatalf("add pet #2: %v", err)
	}
	_, err = f.care.RecordItem(ctx, p2.ID, time.Now(), care.RecordItemInput{
		Kind:     care.ItemMedical,
		Price:    dec("600"),
		DoctorID: "dr-1",
	})
	if err != nil {
		t.Fatalf("record item: %v", err)
	}

	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("1000")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
	})
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if !rec.FinalPrice.Equal(dec("1000")) {
		t.Fatalf("expected combined price 1000, got %s", rec.FinalPrice)
	}
	if len(rec.Summary) != 2 {
		t.Fatalf("expected both pets in summary, got %#v", rec.Summary)
	}
	if kinds := rec.Summary["Luna"]; len(kinds) != 1 || kinds[0] != care.ItemMedical {
		t.Fatalf("expected medical tag for Luna, got %#v", rec.Summary)
	}
}

func TestEngine_Settle_MemberWithoutAccount_CouponUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// membresía sin cuenta de lealtad (alta a medias)
	c, _ := f.newCustomerWithPet(t, "Milo", "100")
	if _, err := f.customers.Enroll(ctx, c.ID, customers.TierSilver); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := f.payments.RegisterCard(ctx, c.ID, dec("100")); err != nil {
		t.Fatalf("register card: %v", err)
	}

	_, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
		UseCoupon:  true,
	})
	if !errors.Is(err, loyalty.ErrNoCouponAvailable) {
		t.Fatalf("expected ErrNoCouponAvailable without account, got %v", err)
	}

	// sin cupón liquida igual; sin cuenta no hay puntos que acreditar
	rec, err := f.engine.Settle(ctx, settlement.Input{
		CustomerID: c.ID,
		Kind:       payments.KindCard,
	})
	if err != nil {
		t.Fatalf("Settle error: %v", err)
	}
	if !rec.FinalPrice.Equal(dec("95")) {
		t.Fatalf("expected final price 95, got %s", rec.FinalPrice)
	}
	if rec.PointsEarned != 0 {
		t.Fatalf("expected 0 points without account, got %d", rec.PointsEarned)
	}
}

func TestEngine_Settle_UnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Settle(context.Background(), settlement.Input{
		CustomerID: "nobody",
		Kind:       payments.KindCard,
	})
	if !errors.Is(err, customers.ErrNotFound) {
		t.Fatalf("expected customers.ErrNotFound, got %v", err)
	}
}
