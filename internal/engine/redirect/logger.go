package redirect

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"linkr/internal/engine/analytics"
)

// ScanRecorder appends one scan event. Best-effort: failures are logged,
// never surfaced to the redirect path.
type ScanRecorder interface {
	Insert(ctx context.Context, e *analytics.ScanEvent) error
}

// ScanMeta is the client metadata captured at redirect time. All fields are
// optional; it is copied by value into the background task so the request
// context's cancellation cannot reach it.
type ScanMeta struct {
	UserAgent string
	Referrer  string
	Country   string
	City      string
	Device    string
	OS        string
	Browser   string
}

type ScanLogger struct {
	scans ScanRecorder
}

func NewScanLogger(scans ScanRecorder) *ScanLogger {
	return &ScanLogger{scans: scans}
}

// LogScan runs on the background runner, after the redirect response is
// already committed.
func (l *ScanLogger) LogScan(code string, meta ScanMeta, occurredAt time.Time) {
	event := &analytics.ScanEvent{
		ID:         uuid.New().String(),
		Code:       code,
		OccurredAt: occurredAt.UnixMilli(),
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
		Country:    meta.Country,
		City:       meta.City,
		Device:     meta.Device,
		OS:         meta.OS,
		Browser:    meta.Browser,
	}

	if err := l.scans.Insert(context.Background(), event); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to log scan")
	}
}
