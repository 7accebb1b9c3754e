package postgres

import (
	"context"
	"database/sql"

	"vet-clinic-billing/internal/domain/payments"
)

type CardsRepo struct {
	db *sql.DB
}

func NewCardsRepo(db *sql.DB) *CardsRepo {
	return &CardsRepo{db: db}
}

func (r *CardsRepo) Create(ctx context.Context, c payments.Card) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cards (id, customer_id, balance, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		c.ID,
		c.CustomerID,
		c.Balance,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CardsRepo) Update(ctx context.Context, c payments.Card) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards
		SET balance = $2, updated_at = $3
		WHERE id = $1
	`, c.ID, c.Balance, c.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return payments.ErrInstrumentNotFound
	}
	return nil
}

func (r *CardsRepo) GetByID(ctx context.Context, id string) (payments.Card, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, balance, created_at, updated_at
		FROM cards
		WHERE id = $1
	`, id)

	var c payments.Card
	if err := row.Scan(&c.ID, &c.CustomerID, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return payments.Card{}, payments.ErrInstrumentNotFound
		}
		return payments.Card{}, err
	}
	return c, nil
}

func (r *CardsRepo) ListByCustomer(ctx context.Context, customerID string) ([]payments.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, balance, created_at, updated_at
		FROM cards
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]payments.Card, 0)
	for rows.Next() {
		var c payments.Card
		if err := rows.Scan(&c.ID, &c.CustomerID, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
