package analytics

import "time"

// ScanEvent is one observed resolution of a code. Append-only, immutable
// once written; only code is mandatory.
type ScanEvent struct {
	ID         string `db:"id" json:"id"`
	Code       string `db:"code" json:"code"`
	OccurredAt int64  `db:"occurred_at" json:"occurred_at"` // unix millis
	UserAgent  string `db:"user_agent" json:"user_agent,omitempty"`
	Referrer   string `db:"referrer" json:"referrer,omitempty"`
	Country    string `db:"country" json:"country,omitempty"`
	City       string `db:"city" json:"city,omitempty"`
	Device     string `db:"device" json:"device"`
	OS         string `db:"os" json:"os,omitempty"`
	Browser    string `db:"browser" json:"browser,omitempty"`
}

func (e *ScanEvent) Time() time.Time {
	return time.UnixMilli(e.OccurredAt).UTC()
}
