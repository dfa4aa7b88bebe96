package workers

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkr/internal/engine/analytics"
	"linkr/internal/engine/links"
	apperrors "linkr/internal/pkg/errors"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A second pooled connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE links (
		code TEXT PRIMARY KEY,
		alias TEXT UNIQUE,
		destination TEXT NOT NULL,
		expires_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE scans (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		occurred_at INTEGER NOT NULL,
		user_agent TEXT DEFAULT '',
		referrer TEXT DEFAULT '',
		country TEXT DEFAULT '',
		city TEXT DEFAULT '',
		device TEXT DEFAULT '',
		os TEXT DEFAULT '',
		browser TEXT DEFAULT ''
	);
	`
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func TestPurger_PurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	linkRepo := links.NewRepository(db)
	scanRepo := analytics.NewRepository(db)
	ctx := context.Background()

	now := time.Now()
	longGone := now.Add(-48 * time.Hour).Unix()
	justExpired := now.Add(-time.Minute).Unix()

	old := &links.Link{Code: "old0001", Destination: "https://example.com", ExpiresAt: &longGone, CreatedAt: now.Unix(), UpdatedAt: now.Unix()}
	require.NoError(t, linkRepo.Create(ctx, old))

	fresh := &links.Link{Code: "new0001", Destination: "https://example.com", ExpiresAt: &justExpired, CreatedAt: now.Unix(), UpdatedAt: now.Unix()}
	require.NoError(t, linkRepo.Create(ctx, fresh))

	require.NoError(t, scanRepo.Insert(ctx, &analytics.ScanEvent{ID: "s1", Code: "old0001", OccurredAt: now.UnixMilli()}))
	require.NoError(t, scanRepo.Insert(ctx, &analytics.ScanEvent{ID: "s2", Code: "new0001", OccurredAt: now.UnixMilli()}))

	// A 24h grace purges only the link that expired two days ago.
	purger := NewPurger(linkRepo, scanRepo, 24*time.Hour)
	purged, err := purger.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, err = linkRepo.FindByIdentifier(ctx, "old0001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	count, err := scanRepo.CountAll(ctx, "old0001")
	require.NoError(t, err)
	assert.Zero(t, count, "scans purged with their link")

	// The recently expired link survives until its grace lapses.
	_, err = linkRepo.FindByIdentifier(ctx, "new0001")
	require.NoError(t, err)
}

func TestPurger_NothingToDo(t *testing.T) {
	db := setupTestDB(t)
	purger := NewPurger(links.NewRepository(db), analytics.NewRepository(db), time.Hour)

	purged, err := purger.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}
