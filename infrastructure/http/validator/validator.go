package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}

	// net/mail accepts display names and comments; the regex pins it to a bare address.
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	return emailRegex.MatchString(strings.ToLower(email))
}

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidateCollectionID rejects identifiers that cannot name a stored
// document in any backend.
func ValidateCollectionID(id string) bool {
	return ValidateRequired(id) && len(id) <= 128 && !strings.ContainsAny(id, "/\\ ")
}
