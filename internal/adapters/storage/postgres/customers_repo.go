package postgres

import (
	"context"
	"database/sql"
	"strings"

	"vet-clinic-billing/internal/domain/customers"

	"github.com/shopspring/decimal"
)

type CustomersRepo struct {
	db *sql.DB
}

func NewCustomersRepo(db *sql.DB) *CustomersRepo {
	return &CustomersRepo{db: db}
}

func (r *CustomersRepo) Create(ctx context.Context, c customers.Customer) error {
	tier, rate, since := memberCols(c.Member)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (
			id, name, phone, email,
			member_tier, member_rate, member_since,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		tier,
		rate,
		since,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CustomersRepo) Update(ctx context.Context, c customers.Customer) error {
	tier, rate, since := memberCols(c.Member)
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET
			name = $2,
			phone = $3,
			email = $4,
			member_tier = $5,
			member_rate = $6,
			member_since = $7,
			updated_at = $8
		WHERE id = $1
	`,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		tier,
		rate,
		since,
		c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return customers.ErrNotFound
	}
	return nil
}

func (r *CustomersRepo) GetByID(ctx context.Context, id string) (customers.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return customers.Customer{}, customers.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, name, phone, email,
			member_tier, member_rate, member_since,
			created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)

	var c customers.Customer
	var tier sql.NullString
	var rate decimal.NullDecimal
	var since sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&tier,
		&rate,
		&since,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return customers.Customer{}, customers.ErrNotFound
		}
		return customers.Customer{}, err
	}

	if tier.Valid {
		c.Member = &customers.Member{
			Tier:         customers.Tier(tier.String),
			DiscountRate: rate.Decimal,
			Since:        since.Time,
		}
	}
	return c, nil
}

func (r *CustomersRepo) AddPet(ctx context.Context, p customers.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (id, customer_id, name, species, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		p.ID,
		p.CustomerID,
		p.Name,
		p.Species,
		p.CreatedAt,
	)
	return err
}

func (r *CustomersRepo) GetPetByName(ctx context.Context, customerID, name string) (customers.Pet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, name, species, created_at
		FROM pets
		WHERE customer_id = $1 AND lower(name) = lower($2)
	`, customerID, name)

	var p customers.Pet
	if err := row.Scan(&p.ID, &p.CustomerID, &p.Name, &p.Species, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return customers.Pet{}, customers.ErrNotFound
		}
		return customers.Pet{}, err
	}
	return p, nil
}

func (r *CustomersRepo) ListPets(ctx context.Context, customerID string) ([]customers.Pet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, name, species, created_at
		FROM pets
		WHERE customer_id = $1
		ORDER BY created_at ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]customers.Pet, 0)
	for rows.Next() {
		var p customers.Pet
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Name, &p.Species, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// member_tier NULL = cliente sin membresía; las tres columnas van juntas
func memberCols(m *customers.Member) (sql.NullString, decimal.NullDecimal, sql.NullTime) {
	if m == nil {
		return sql.NullString{}, decimal.NullDecimal{}, sql.NullTime{}
	}
	return sql.NullString{String: string(m.Tier), Valid: true},
		decimal.NullDecimal{Decimal: m.DiscountRate, Valid: true},
		sql.NullTime{Time: m.Since, Valid: true}
}
