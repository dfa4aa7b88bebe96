package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A second pooled connection would see its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema := `
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

func insertScan(t *testing.T, repo *Repository, id int, code string, at time.Time, country, city, device string) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &ScanEvent{
		ID:         fmt.Sprintf("scan-%03d", id),
		Code:       code,
		OccurredAt: at.UnixMilli(),
		Country:    country,
		City:       city,
		Device:     device,
	}))
}

func TestService_Snapshot_Counts(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)

	// 5 events: [US, US, US, CA, CA]. Three today, one yesterday, one old.
	insertScan(t, repo, 1, "abc1234", now.Add(-time.Hour), "US", "Austin", "mobile")
	insertScan(t, repo, 2, "abc1234", now.Add(-2*time.Hour), "US", "Austin", "desktop")
	insertScan(t, repo, 3, "abc1234", now.Add(-3*time.Hour), "US", "Dallas", "mobile")
	insertScan(t, repo, 4, "abc1234", now.AddDate(0, 0, -1), "CA", "Toronto", "tablet")
	insertScan(t, repo, 5, "abc1234", now.AddDate(0, 0, -10), "CA", "Toronto", "mobile")

	// Another code's traffic must not bleed in.
	insertScan(t, repo, 6, "other99", now, "GB", "London", "desktop")

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.TotalCount)
	assert.Equal(t, 3, snap.CountToday)

	require.Len(t, snap.TopCountries, 2)
	assert.Equal(t, CountPoint{Name: "US", Count: 3}, snap.TopCountries[0])
	assert.Equal(t, CountPoint{Name: "CA", Count: 2}, snap.TopCountries[1])

	assert.Equal(t, map[string]int{"mobile": 3, "desktop": 1, "tablet": 1}, snap.Devices)
}

func TestService_Snapshot_Timeline(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	insertScan(t, repo, 1, "abc1234", now, "US", "", "mobile")
	insertScan(t, repo, 2, "abc1234", now.AddDate(0, 0, -1), "US", "", "mobile")
	insertScan(t, repo, 3, "abc1234", now.AddDate(0, 0, -1).Add(time.Hour), "US", "", "mobile")
	insertScan(t, repo, 4, "abc1234", now.AddDate(0, 0, -6), "US", "", "mobile")
	// Outside the window.
	insertScan(t, repo, 5, "abc1234", now.AddDate(0, 0, -7), "US", "", "mobile")

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)

	require.Len(t, snap.Timeline, 7)
	assert.Equal(t, "2026-08-21", snap.Timeline[0].Date, "oldest day first")
	assert.Equal(t, "2026-08-27", snap.Timeline[6].Date)

	counts := make([]int, 0, 7)
	for _, p := range snap.Timeline {
		counts = append(counts, p.Count)
	}
	assert.Equal(t, []int{1, 0, 0, 0, 0, 2, 1}, counts)
}

func TestService_Snapshot_TieBreakFirstSeen(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	// FR and DE tie at 2; FR seen first must sort first.
	insertScan(t, repo, 1, "abc1234", now.Add(-4*time.Minute), "FR", "", "desktop")
	insertScan(t, repo, 2, "abc1234", now.Add(-3*time.Minute), "DE", "", "desktop")
	insertScan(t, repo, 3, "abc1234", now.Add(-2*time.Minute), "DE", "", "desktop")
	insertScan(t, repo, 4, "abc1234", now.Add(-1*time.Minute), "FR", "", "desktop")

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)

	require.Len(t, snap.TopCountries, 2)
	assert.Equal(t, "FR", snap.TopCountries[0].Name)
	assert.Equal(t, "DE", snap.TopCountries[1].Name)
}

func TestService_Snapshot_TopNCapped(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		insertScan(t, repo, i, "abc1234", now.Add(-time.Duration(i)*time.Minute), fmt.Sprintf("C%02d", i), "", "desktop")
	}

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)
	assert.Len(t, snap.TopCountries, 10)
}

func TestService_Snapshot_RecentScans(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		insertScan(t, repo, i, "abc1234", now.Add(-time.Duration(i)*time.Minute), "US", "", "mobile")
	}

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)

	require.Len(t, snap.RecentScans, 10)
	for i := 1; i < len(snap.RecentScans); i++ {
		assert.GreaterOrEqual(t, snap.RecentScans[i-1].OccurredAt, snap.RecentScans[i].OccurredAt, "most recent first")
	}
}

func TestService_Snapshot_EmptyCode(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	snap, err := svc.Snapshot(context.Background(), "nothing")
	require.NoError(t, err)

	assert.Zero(t, snap.TotalCount)
	assert.Zero(t, snap.CountToday)
	assert.Empty(t, snap.TopCountries)
	assert.Empty(t, snap.RecentScans)
	assert.Len(t, snap.Timeline, 7)
}

func TestService_Snapshot_DeviceFallbackFromUserAgent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	svc := NewService(repo)

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	// Device column empty: class derived from the user agent instead.
	require.NoError(t, repo.Insert(context.Background(), &ScanEvent{
		ID:         "scan-ua",
		Code:       "abc1234",
		OccurredAt: now.UnixMilli(),
		UserAgent:  "Mozilla/5.0 (iPad; CPU OS 13_3 like Mac OS X) Mobile/15E148",
	}))

	snap, err := svc.snapshotAt(context.Background(), "abc1234", now)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"tablet": 1}, snap.Devices)
}
