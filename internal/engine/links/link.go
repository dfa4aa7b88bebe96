package links

import "time"

// Link is the durable record behind a short code. Destination is the only
// mutable attribute; expiry makes the record logically gone regardless of
// any cache state.
type Link struct {
	Code        string  `db:"code" json:"code"`
	Alias       *string `db:"alias" json:"alias,omitempty"`
	Destination string  `db:"destination" json:"destination"`
	ExpiresAt   *int64  `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   int64   `db:"created_at" json:"created_at"`
	UpdatedAt   int64   `db:"updated_at" json:"updated_at"`
}

func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && *l.ExpiresAt <= now.Unix()
}

// CacheTTL bounds a cache entry's lifetime by the link's own expiry, so a
// cache hit can never outlive the record.
func (l *Link) CacheTTL(defaultTTL time.Duration, now time.Time) time.Duration {
	if l.ExpiresAt == nil {
		return defaultTTL
	}
	remaining := time.Unix(*l.ExpiresAt, 0).Sub(now)
	if remaining < defaultTTL {
		return remaining
	}
	return defaultTTL
}
