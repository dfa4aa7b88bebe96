package analytics

import (
	"context"
	"sort"
	"time"

	"linkr/internal/pkg/parser"
)

const (
	topN         = 10
	recentN      = 10
	timelineDays = 7
)

// CountPoint is one row of a grouped breakdown.
type CountPoint struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayPoint is one UTC calendar day of the timeline.
type DayPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// UsageSnapshot is derived fresh per query, never persisted.
type UsageSnapshot struct {
	Code         string         `json:"code"`
	TotalCount   int            `json:"total_count"`
	CountToday   int            `json:"count_today"`
	Devices      map[string]int `json:"devices"`
	TopCountries []CountPoint   `json:"top_countries"`
	TopCities    []CountPoint   `json:"top_cities"`
	Timeline     []DayPoint     `json:"timeline"` // last 7 UTC days, oldest first
	RecentScans  []ScanEvent    `json:"recent_scans"`
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Snapshot computes the dashboard for a code. Day-bucket counts are pushed
// into the store as range queries; breakdowns are grouped in memory over the
// code's events in first-seen order.
func (s *Service) Snapshot(ctx context.Context, code string) (*UsageSnapshot, error) {
	return s.snapshotAt(ctx, code, time.Now())
}

func (s *Service) snapshotAt(ctx context.Context, code string, now time.Time) (*UsageSnapshot, error) {
	now = now.UTC()
	snap := &UsageSnapshot{Code: code}

	total, err := s.repo.CountAll(ctx, code)
	if err != nil {
		return nil, err
	}
	snap.TotalCount = total

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.repo.CountBetween(ctx, code, dayStart.UnixMilli(), dayStart.Add(24*time.Hour).UnixMilli())
	if err != nil {
		return nil, err
	}
	snap.CountToday = today

	snap.Timeline = make([]DayPoint, 0, timelineDays)
	for i := timelineDays - 1; i >= 0; i-- {
		start := dayStart.AddDate(0, 0, -i)
		count, err := s.repo.CountBetween(ctx, code, start.UnixMilli(), start.Add(24*time.Hour).UnixMilli())
		if err != nil {
			return nil, err
		}
		snap.Timeline = append(snap.Timeline, DayPoint{
			Date:  start.Format("2006-01-02"),
			Count: count,
		})
	}

	events, err := s.repo.ListByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	snap.Devices = map[string]int{}
	for i := range events {
		device := events[i].Device
		if device == "" {
			device = parser.DeviceClass(events[i].UserAgent)
		}
		snap.Devices[device]++
	}

	snap.TopCountries = groupTop(events, func(e *ScanEvent) string { return e.Country }, topN)
	snap.TopCities = groupTop(events, func(e *ScanEvent) string { return e.City }, topN)

	recent, err := s.repo.Recent(ctx, code, recentN)
	if err != nil {
		return nil, err
	}
	snap.RecentScans = recent

	return snap, nil
}

// groupTop groups events by a field, descending by count. Events arrive in
// first-seen order and the sort is stable, so ties break deterministically.
func groupTop(events []ScanEvent, field func(*ScanEvent) string, n int) []CountPoint {
	index := map[string]int{}
	var groups []CountPoint

	for i := range events {
		name := field(&events[i])
		if name == "" {
			continue
		}
		pos, seen := index[name]
		if !seen {
			index[name] = len(groups)
			groups = append(groups, CountPoint{Name: name})
			pos = len(groups) - 1
		}
		groups[pos].Count++
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}
