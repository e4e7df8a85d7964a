package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 64
	MinPasswordLength = 8
	// bcrypt ignores input past 72 bytes
	MaxPasswordLength = 72
)

var (
	ErrInvalidUsername = errors.New("username must be 3-64 letters, digits, dots, dashes or underscores")
	ErrInvalidPassword = errors.New("password must be 8-72 characters")
)

// User owns a transaction log.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeUsername trims the username and checks its length and alphabet.
func NormalizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < MinUsernameLength || len(s) > MaxUsernameLength {
		return "", ErrInvalidUsername
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' {
			return "", ErrInvalidUsername
		}
	}
	return s, nil
}

func ValidatePassword(p string) error {
	if len(p) < MinPasswordLength || len(p) > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}
