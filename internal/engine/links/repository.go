package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	apperrors "linkr/internal/pkg/errors"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, link *Link) error {
	query := `
		INSERT INTO links (code, alias, destination, expires_at, created_at, updated_at)
		VALUES (:code, :alias, :destination, :expires_at, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, link)
	if err != nil {
		if isConstraintError(err) {
			return apperrors.ErrConflict
		}
		return fmt.Errorf("create link: %w", err)
	}

	return nil
}

// FindByIdentifier resolves either a generated code or a caller-chosen
// alias; the two share one identifier space.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*Link, error) {
	var link Link
	query := `
		SELECT code, alias, destination, expires_at, created_at, updated_at
		FROM links WHERE code = ? OR alias = ?
	`

	err := r.db.GetContext(ctx, &link, query, identifier, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find link: %w", err)
	}

	return &link, nil
}

func (r *Repository) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM links WHERE code = ? OR alias = ?)"
	err := r.db.GetContext(ctx, &exists, query, identifier, identifier)
	return exists, err
}

// UpdateDestination rewrites the destination and updated_at in one
// statement. Cache invalidation is the caller's job, strictly after this
// returns.
func (r *Repository) UpdateDestination(ctx context.Context, identifier, destination string) (*Link, error) {
	query := `
		UPDATE links SET destination = ?, updated_at = ?
		WHERE code = ? OR alias = ?
	`

	res, err := r.db.ExecContext(ctx, query, destination, time.Now().Unix(), identifier, identifier)
	if err != nil {
		return nil, fmt.Errorf("update destination: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update destination: %w", err)
	}
	if affected == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.FindByIdentifier(ctx, identifier)
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Link, error) {
	var list []*Link
	query := `
		SELECT code, alias, destination, expires_at, created_at, updated_at
		FROM links
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	if err := r.db.SelectContext(ctx, &list, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return list, nil
}

// ExpiredCodes returns codes whose expiry lapsed before cutoff. Used by the
// out-of-band purge worker; the serving path never deletes.
func (r *Repository) ExpiredCodes(ctx context.Context, cutoff int64) ([]string, error) {
	var codes []string
	query := "SELECT code FROM links WHERE expires_at IS NOT NULL AND expires_at < ?"

	if err := r.db.SelectContext(ctx, &codes, query, cutoff); err != nil {
		return nil, fmt.Errorf("expired codes: %w", err)
	}
	return codes, nil
}

func (r *Repository) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("DELETE FROM links WHERE code IN (?)", codes)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete links: %w", err)
	}
	return res.RowsAffected()
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
