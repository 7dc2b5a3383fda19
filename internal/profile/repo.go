package profile

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

// Upsert creates the profile for id with the user role, or refreshes email
// and name on an existing one. The role of an existing profile is kept.
func (r *Repository) Upsert(ctx context.Context, id, email string, fullName *string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1::uuid, $2, $3, 'user')
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    full_name = COALESCE(EXCLUDED.full_name, profiles.full_name)
		RETURNING id::text, email, full_name, role, created_at`,
		id, email, fullName,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.Pool.QueryRow(ctx, `
		SELECT id::text, email, full_name, role, created_at
		FROM profiles
		WHERE id = $1::uuid`,
		id,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) SetRole(ctx context.Context, id, role string) error {
	ct, err := r.Pool.Exec(ctx, `UPDATE profiles SET role = $1 WHERE id = $2::uuid`, role, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
