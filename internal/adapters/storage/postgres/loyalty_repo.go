package postgres

import (
	"context"
	"database/sql"

	"vet-clinic-billing/internal/domain/loyalty"
)

type LoyaltyRepo struct {
	db *sql.DB
}

func NewLoyaltyRepo(db *sql.DB) *LoyaltyRepo {
	return &LoyaltyRepo{db: db}
}

func (r *LoyaltyRepo) Create(ctx context.Context, a loyalty.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loyalty_accounts (customer_id, points, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
	`,
		a.CustomerID,
		a.Points,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

// Update persiste saldo y cola de cupones. La cola se reemplaza entera
// (delete + insert) dentro de una transacción; son pocas filas.
func (r *LoyaltyRepo) Update(ctx context.Context, a loyalty.Account) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE loyalty_accounts
		SET points = $2, updated_at = $3
		WHERE customer_id = $1
	`, a.CustomerID, a.Points, a.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return loyalty.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM loyalty_coupons WHERE customer_id = $1`, a.CustomerID); err != nil {
		return err
	}
	for pos, c := range a.Coupons {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO loyalty_coupons (id, customer_id, position, discount, minted_at)
			VALUES ($1,$2,$3,$4,$5)
		`, c.ID, a.CustomerID, pos, c.Discount, c.MintedAt)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *LoyaltyRepo) GetByCustomer(ctx context.Context, customerID string) (loyalty.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT customer_id, points, created_at, updated_at
		FROM loyalty_accounts
		WHERE customer_id = $1
	`, customerID)

	var a loyalty.Account
	if err := row.Scan(&a.CustomerID, &a.Points, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return loyalty.Account{}, loyalty.ErrNotFound
		}
		return loyalty.Account{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, discount, minted_at
		FROM loyalty_coupons
		WHERE customer_id = $1
		ORDER BY position ASC
	`, customerID)
	if err != nil {
		return loyalty.Account{}, err
	}
	defer rows.Close()

	a.Coupons = make([]loyalty.Coupon, 0)
	for rows.Next() {
		var c loyalty.Coupon
		if err := rows.Scan(&c.ID, &c.Discount, &c.MintedAt); err != nil {
			return loyalty.Account{}, err
		}
		a.Coupons = append(a.Coupons, c)
	}
	return a, rows.Err()
}
