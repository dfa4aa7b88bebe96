package analytics

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, e *ScanEvent) error {
	query := `
		INSERT INTO scans (id, code, occurred_at, user_agent, referrer, country, city, device, os, browser)
		VALUES (:id, :code, :occurred_at, :user_agent, :referrer, :country, :city, :device, :os, :browser)
	`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	return nil
}

func (r *Repository) CountAll(ctx context.Context, code string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM scans WHERE code = ?", code)
	return count, err
}

// CountBetween counts events with occurred_at in [startMs, endMs).
func (r *Repository) CountBetween(ctx context.Context, code string, startMs, endMs int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM scans WHERE code = ? AND occurred_at >= ? AND occurred_at < ?"
	err := r.db.GetContext(ctx, &count, query, code, startMs, endMs)
	return count, err
}

// ListByCode returns the code's events oldest first. Ascending order keeps
// the first-seen tie-break of the top-N groupings deterministic.
func (r *Repository) ListByCode(ctx context.Context, code string) ([]ScanEvent, error) {
	var events []ScanEvent
	query := `
		SELECT id, code, occurred_at, user_agent, referrer, country, city, device, os, browser
		FROM scans WHERE code = ?
		ORDER BY occurred_at ASC, id ASC
	`

	if err := r.db.SelectContext(ctx, &events, query, code); err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return events, nil
}

func (r *Repository) Recent(ctx context.Context, code string, limit int) ([]ScanEvent, error) {
	var events []ScanEvent
	query := `
		SELECT id, code, occurred_at, user_agent, referrer, country, city, device, os, browser
		FROM scans WHERE code = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`

	if err := r.db.SelectContext(ctx, &events, query, code, limit); err != nil {
		return nil, fmt.Errorf("recent scans: %w", err)
	}
	return events, nil
}

func (r *Repository) DeleteByCodes(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In("DELETE FROM scans WHERE code IN (?)", codes)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("delete scans: %w", err)
	}
	return res.RowsAffected()
}
