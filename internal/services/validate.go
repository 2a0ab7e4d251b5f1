package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hbnb/apiserver/internal/apperr"
)

const (
	maxEmailLength       = 120
	maxNameLength        = 128
	maxDescriptionLength = 512
	maxCommentLength     = 2048
	minPasswordLength    = 8

	// bcrypt only reads the first 72 bytes of a secret.
	maxPasswordBytes = 72
)

func requireText(field, value string, limit int) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Invalid(field + " is required")
	}
	return limitText(field, value, limit)
}

func limitText(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return apperr.Invalid(fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

func validateEmail(email string) error {
	if err := requireText("email", email, maxEmailLength); err != nil {
		return err
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(email, " \t\r\n") {
		return apperr.Invalid("email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperr.Invalid("password is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return apperr.Invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return apperr.Invalid(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid(field + " is required")
	}
	return nil
}
