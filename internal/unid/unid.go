// Package unid generates and checks document unique identifiers.
package unid

import (
	"strings"

	"github.com/google/uuid"
)

// Len is the length of a UNID: 32 upper-case hex digits.
const Len = 32

// New returns a random UNID.
func New() string {
	u := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", ""))
}

// Valid reports whether s is 32 hex digits, in either case.
func Valid(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Normalize returns s in the canonical upper-case form. UNIDs compare
// case-insensitively.
func Normalize(s string) string {
	return strings.ToUpper(s)
}
