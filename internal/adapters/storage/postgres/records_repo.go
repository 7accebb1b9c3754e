package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"vet-clinic-billing/internal/domain/care"
	"vet-clinic-billing/internal/domain/payments"
	"vet-clinic-billing/internal/domain/settlement"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Append(ctx context.Context, rec settlement.PaymentRecord) error {
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO payment_records (
			id, customer_id,
			instrument_kind, final_price, summary,
			date, points_earned, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID,
		rec.CustomerID,
		string(rec.InstrumentKind),
		rec.FinalPrice,
		summary,
		rec.Date,
		rec.PointsEarned,
		rec.CreatedAt,
	)
	return err
}

func (r *RecordsRepo) ListByCustomer(ctx context.Context, customerID string) ([]settlement.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, instrument_kind, final_price, summary,
		       date, points_earned, created_at
		FROM payment_records
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]settlement.PaymentRecord, 0)
	for rows.Next() {
		var rec settlement.PaymentRecord
		var kind string
		var summary []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.CustomerID,
			&kind,
			&rec.FinalPrice,
			&summary,
			&rec.Date,
			&rec.PointsEarned,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.InstrumentKind = payments.Kind(kind)
		rec.Summary = make(map[string][]care.ItemKind)
		if err := json.Unmarshal(summary, &rec.Summary); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
