package postgres

import (
	"context"
	"database/sql"
	"time"

	"vet-clinic-billing/internal/domain/care"
)

type CareRepo struct {
	db *sql.DB
}

func NewCareRepo(db *sql.DB) *CareRepo {
	return &CareRepo{db: db}
}

func (r *CareRepo) Create(ctx context.Context, b care.Bundle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bundles (id, pet_id, date, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
	`,
		b.ID,
		b.PetID,
		b.Date,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertItems(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// Update reemplaza los items (delete + insert); los appends son chicos.
func (r *CareRepo) Update(ctx context.Context, b care.Bundle) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE bundles SET updated_at = $2 WHERE id = $1
	`, b.ID, b.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return care.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bundle_items WHERE bundle_id = $1`, b.ID); err != nil {
		return err
	}
	if err := insertItems(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CareRepo) GetByPetAndDate(ctx context.Context, petID string, day time.Time) (care.Bundle, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, date, created_at, updated_at
		FROM bundles
		WHERE pet_id = $1 AND date = $2
	`, petID, day)

	var b care.Bundle
	if err := row.Scan(&b.ID, &b.PetID, &b.Date, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return care.Bundle{}, care.ErrNotFound
		}
		return care.Bundle{}, err
	}

	items, err := r.loadItems(ctx, b.ID)
	if err != nil {
		return care.Bundle{}, err
	}
	b.Items = items
	return b, nil
}

func (r *CareRepo) ListByPet(ctx context.Context, petID string) ([]care.Bundle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, date, created_at, updated_at
		FROM bundles
		WHERE pet_id = $1
		ORDER BY date ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]care.Bundle, 0)
	for rows.Next() {
		var b care.Bundle
		if err := rows.Scan(&b.ID, &b.PetID, &b.Date, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, b care.Bundle) error {
	for pos, it := range b.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bundle_items (
				id, bundle_id, position,
				kind, price, room, days, doctor_id,
				recorded_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`,
			it.ID,
			b.ID,
			pos,
			string(it.Kind),
			it.Price,
			it.Room,
			it.Days,
			it.DoctorID,
			it.RecordedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CareRepo) loadItems(ctx context.Context, bundleID string) ([]care.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, price, room, days, doctor_id, recorded_at
		FROM bundle_items
		WHERE bundle_id = $1
		ORDER BY position ASC
	`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]care.LineItem, 0)
	for rows.Next() {
		var it care.LineItem
		var kind string
		if err := rows.Scan(&it.ID, &kind, &it.Price, &it.Room, &it.Days, &it.DoctorID, &it.RecordedAt); err != nil {
			return nil, err
		}
		it.Kind = care.ItemKind(kind)
		out = append(out, it)
	}
	return out, rows.Err()
}
