// Package validation checks user-supplied fields before they reach storage.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordBytes = 72

	MaxUsernameLength = 80
	MaxEmailLength    = 120
	MaxNameLength     = 120
	MaxLocationLength = 200
)

// Repetition counts runes, so the bound holds for non-ASCII names.
var usernameRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}_.-]{3,80}$`)

// ValidateUsername validates username format.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errors.New("username must be 3-80 letters or digits, optionally with '.', '_' or '-'")
	}
	return nil
}

// ValidateEmail validates email format.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email address is not valid")
	}
	return nil
}

// ValidatePassword enforces the length bounds bcrypt can honour.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateName checks a club, request or event name.
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%s must be at most %d characters", field, MaxNameLength)
	}
	return nil
}

// ValidateLocation checks an optional event location.
func ValidateLocation(location string) error {
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return fmt.Errorf("location must be at most %d characters", MaxLocationLength)
	}
	return nil
}
