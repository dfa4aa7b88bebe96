package links

import (
	"net/url"
	"time"

	apperrors "linkr/internal/pkg/errors"
)

func ValidateDestination(destination string) error {
	if destination == "" {
		return apperrors.NewValidation("destination", "required")
	}

	u, err := url.Parse(destination)
	if err != nil {
		return apperrors.NewValidation("destination", "malformed URI")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return apperrors.NewValidation("destination", "must be an absolute http(s) URI")
	}
	if u.Host == "" {
		return apperrors.NewValidation("destination", "missing host")
	}

	return nil
}

func ValidateExpiry(expiresAt *int64, now time.Time) error {
	if expiresAt == nil {
		return nil
	}
	if *expiresAt <= now.Unix() {
		return apperrors.NewValidation("expires_at", "must be in the future")
	}
	return nil
}
