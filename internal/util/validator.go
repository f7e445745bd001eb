package util

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// ValidateUsername checks signup usernames: 3-32 letters, digits or
// underscores.
func ValidateUsername(username string) error {
	if !usernameRe.MatchString(strings.TrimSpace(username)) {
		return fmt.Errorf("username must be 3-32 letters, digits or underscores")
	}
	return nil
}

// ValidatePassword requires at least 8 characters.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password is too short (must be at least 8 symbols)")
	}
	if len(password) > 64 {
		return fmt.Errorf("password is too long (must be at most 64 symbols)")
	}
	return nil
}

// ValidatePhone accepts an optional leading plus and 7-15 digits.
// Empty phone is allowed; uniqueness is checked at the database level.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("phone number is malformed")
	}
	return nil
}
