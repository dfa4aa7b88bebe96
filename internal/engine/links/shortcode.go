package links

import (
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	apperrors "linkr/internal/pkg/errors"
)

const (
	// Letters + digits, case-sensitive. 62^7 ≈ 3.5e12 combinations at the
	// default length, so blind collisions are negligible; the store's
	// uniqueness constraint still backstops them.
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	CodeLength     = 7
	maxCodeLength  = 16
	maxAliasLength = 7
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Route names the short domain cannot hand out.
var reservedAliases = []string{"api", "admin", "health", "metrics", "links", "stats"}

// GenerateCode draws a code uniformly from the alphabet using a
// cryptographically strong source. Never a hash or a counter: codes must
// not be enumerable.
func GenerateCode(length int) (string, error) {
	if length < 1 || length > maxCodeLength {
		length = CodeLength
	}
	return gonanoid.Generate(codeAlphabet, length)
}

// ValidateAlias checks a caller-chosen alias against length, charset and
// reserved-word rules.
func ValidateAlias(alias string) error {
	if alias == "" || len(alias) > maxAliasLength {
		return apperrors.NewValidation("alias", "must be 1-7 characters")
	}
	if !aliasPattern.MatchString(alias) {
		return apperrors.NewValidation("alias", "allowed characters are A-Z, a-z, 0-9, _ and -")
	}
	for _, r := range reservedAliases {
		if strings.EqualFold(alias, r) {
			return apperrors.NewValidation("alias", "reserved word")
		}
	}
	return nil
}
