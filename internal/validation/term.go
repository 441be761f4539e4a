package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTermLength bounds a search term in runes.
const MaxTermLength = 256

var (
	ErrEmptyTerm           = errors.New("search term cannot be empty")
	ErrTermTooLong         = fmt.Errorf("search term too long (max %d characters)", MaxTermLength)
	ErrInvalidCharacters   = errors.New("search term contains control characters")
	ErrInvalidTermEncoding = errors.New("search term is not valid UTF-8")
)

// ValidateSearchTerm trims surrounding whitespace and rejects terms the API
// cannot be queried with.
func ValidateSearchTerm(term string) (string, error) {
	if !utf8.ValidString(term) {
		return "", ErrInvalidTermEncoding
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyTerm
	}
	if utf8.RuneCountInString(term) > MaxTermLength {
		return "", ErrTermTooLong
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return "", ErrInvalidCharacters
		}
	}

	return term, nil
}
