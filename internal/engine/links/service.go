package links

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "linkr/internal/pkg/errors"
)

// createAttempts bounds the collision retry loop. Exhausting it with random
// 62^7 draws signals something operationally wrong, not bad luck.
const createAttempts = 3

// Store is the durable record of code → destination.
type Store interface {
	Create(ctx context.Context, link *Link) error
	FindByIdentifier(ctx context.Context, identifier string) (*Link, error)
	ExistsByIdentifier(ctx context.Context, identifier string) (bool, error)
	UpdateDestination(ctx context.Context, identifier, destination string) (*Link, error)
	List(ctx context.Context, limit, offset int) ([]*Link, error)
}

// Invalidator drops a resolution-cache entry. The update path calls it
// synchronously, after the store write and before acknowledging.
type Invalidator interface {
	Invalidate(code string) error
}

type Service struct {
	store Store
	cache Invalidator
}

func NewService(store Store, cache Invalidator) *Service {
	return &Service{store: store, cache: cache}
}

// CreateLink validates input, then loops: generate a fresh code, attempt the
// insert, retry on collision. A caller-supplied alias is never retried; its
// collision surfaces immediately.
func (s *Service) CreateLink(ctx context.Context, destination string, alias *string, expiresAt *int64) (*Link, error) {
	if err := ValidateDestination(destination); err != nil {
		return nil, err
	}
	if err := ValidateExpiry(expiresAt, time.Now()); err != nil {
		return nil, err
	}
	if alias != nil {
		if err := ValidateAlias(*alias); err != nil {
			return nil, err
		}
		// Aliases share the identifier space with codes, so the column
		// constraints alone cannot catch an alias shadowing a code.
		taken, err := s.store.ExistsByIdentifier(ctx, *alias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrConflict
		}
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := GenerateCode(CodeLength)
		if err != nil {
			return nil, err
		}

		now := time.Now().Unix()
		link := &Link{
			Code:        code,
			Alias:       alias,
			Destination: destination,
			ExpiresAt:   expiresAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = s.store.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}

		// A conflict can come from the alias losing a race rather than
		// from the generated code. Alias conflicts are not retried.
		if alias != nil {
			taken, checkErr := s.store.ExistsByIdentifier(ctx, *alias)
			if checkErr == nil && taken {
				return nil, apperrors.ErrConflict
			}
		}

		log.Warn().Str("code", code).Int("attempt", attempt+1).Msg("short code collision, retrying")
	}

	log.Error().Int("attempts", createAttempts).Msg("short code space exhaustion suspected")
	return nil, apperrors.ErrCodeExhausted
}

func (s *Service) GetLink(ctx context.Context, identifier string) (*Link, error) {
	return s.store.FindByIdentifier(ctx, identifier)
}

func (s *Service) ListLinks(ctx context.Context, limit, offset int) ([]*Link, error) {
	return s.store.List(ctx, limit, offset)
}

// UpdateDestination writes the store, then synchronously invalidates the
// cache entries for the link's code and alias. Invalidate-after-write,
// never before: the next resolution must observe the new destination.
func (s *Service) UpdateDestination(ctx context.Context, identifier, destination string) (*Link, error) {
	if err := ValidateDestination(destination); err != nil {
		return nil, err
	}

	link, err := s.store.UpdateDestination(ctx, identifier, destination)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(link.Code); err != nil {
			// The store is the source of truth, so the update stands, but a
			// stale redirect is possible until the cache entry's TTL lapses.
			log.Error().Err(err).Str("code", link.Code).Msg("cache invalidation failed, stale redirect possible")
		}
		if link.Alias != nil {
			if err := s.cache.Invalidate(*link.Alias); err != nil {
				log.Error().Err(err).Str("alias", *link.Alias).Msg("cache invalidation failed, stale redirect possible")
			}
		}
	}

	return link, nil
}
