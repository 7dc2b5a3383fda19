package contacts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/compleetvloeren/compleetkozijnen-premium-presentatie-sub001/internal/domain"
)

// Store keeps contact form submissions. It works on any *sql.DB opened with
// the pgx stdlib driver.
type Store struct {
	DB *sqlx.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: sqlx.NewDb(db, "pgx")}
}

const contactInsert = `INSERT INTO contact_submissions (name, email, phone, subject, message)
VALUES (:name, :email, :phone, :subject, :message)
RETURNING CAST(id AS text) AS id, status, created_at, updated_at`

const contactColumns = `id::text AS id, name, email, phone, subject, message, status, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, m *domain.ContactSubmission) error {
	stmt, err := s.DB.PrepareNamedContext(ctx, contactInsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var row struct {
		ID        string       `db:"id"`
		Status    string       `db:"status"`
		CreatedAt sql.NullTime `db:"created_at"`
		UpdatedAt sql.NullTime `db:"updated_at"`
	}
	if err := stmt.QueryRowxContext(ctx, m).StructScan(&row); err != nil {
		return err
	}
	m.ID = row.ID
	m.Status = row.Status
	m.CreatedAt = row.CreatedAt.Time
	m.UpdatedAt = row.UpdatedAt.Time
	return nil
}

// List returns the newest submissions first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]domain.ContactSubmission, error) {
	out := make([]domain.ContactSubmission, 0)
	var err error
	if limit > 0 {
		err = s.DB.SelectContext(ctx, &out,
			`SELECT `+contactColumns+` FROM contact_submissions ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		err = s.DB.SelectContext(ctx, &out,
			`SELECT `+contactColumns+` FROM contact_submissions ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.ContactSubmission, error) {
	var m domain.ContactSubmission
	err := s.DB.GetContext(ctx, &m, `SELECT `+contactColumns+` FROM contact_submissions WHERE id = $1::uuid`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE contact_submissions SET status = $1, updated_at = NOW() WHERE id = $2::uuid`,
		status, id,
	)
	return affected(res, err)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = $1::uuid`, id)
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
