package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"linkr/internal/engine/analytics"
	"linkr/internal/engine/links"
)

// Purger removes links whose expiry lapsed more than grace ago, together
// with their scan events. The serving path treats expired links as gone but
// never deletes; this out-of-band sweep is the only deleter.
type Purger struct {
	links *links.Repository
	scans *analytics.Repository
	grace time.Duration
}

func NewPurger(linkRepo *links.Repository, scanRepo *analytics.Repository, grace time.Duration) *Purger {
	return &Purger{
		links: linkRepo,
		scans: scanRepo,
		grace: grace,
	}
}

func (p *Purger) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-p.grace).Unix()

	codes, err := p.links.ExpiredCodes(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(codes) == 0 {
		return 0, nil
	}

	// Scans first: a crash between the two deletes must not orphan events
	// under a code that no longer exists.
	scans, err := p.scans.DeleteByCodes(ctx, codes)
	if err != nil {
		return 0, err
	}

	purged, err := p.links.DeleteByCodes(ctx, codes)
	if err != nil {
		return 0, err
	}

	log.Info().Int64("links", purged).Int64("scans", scans).Msg("purged expired links")
	return purged, nil
}
