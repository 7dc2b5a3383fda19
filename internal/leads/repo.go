package leads

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

const leadColumns = `id::text, name, email, phone, company, project_type, address, postal_code,
	city, budget, timeline, message, status, created_at, updated_at`

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

// Insert stores l and fills in the server-assigned fields.
func (r *Repository) Insert(ctx context.Context, l *domain.Lead) error {
	return r.Pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, company, project_type, address, postal_code,
		                   city, budget, timeline, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id::text, status, created_at, updated_at`,
		l.Name, l.Email, l.Phone, l.Company, l.ProjectType, l.Address, l.PostalCode,
		l.City, l.Budget, l.Timeline, l.Message,
	).Scan(&l.ID, &l.Status, &l.CreatedAt, &l.UpdatedAt)
}

// List returns the newest leads first. limit <= 0 means no limit.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Lead, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1::uuid`, id)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	ct, err := r.Pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2::uuid`,
		status, id,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.Company,
		&l.ProjectType,
		&l.Address,
		&l.PostalCode,
		&l.City,
		&l.Budget,
		&l.Timeline,
		&l.Message,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
