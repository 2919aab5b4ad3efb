package service

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// maxEmailLength matches the email columns of every table.
const maxEmailLength = 254

// fieldErrors collects per-field validation failures.
type fieldErrors map[string]any

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) maxLen(field, value string, max int) {
	if _, set := f[field]; set {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		f[field] = "must be at most " + strconv.Itoa(max) + " characters"
	}
}

func (f fieldErrors) email(field, value string) {
	if _, set := f[field]; set {
		return
	}
	if !validEmail(value) {
		f[field] = "must be a valid email address"
		return
	}
	f.maxLen(field, value, maxEmailLength)
}

// clip shortens value to at most max runes.
func clip(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	return string([]rune(value)[:max])
}

// err returns a ValidationError carrying every collected field, or nil.
func (f fieldErrors) err(message string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, map[string]any(f))
}

func validEmail(value string) bool {
	value = strings.TrimSpace(value)
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}
