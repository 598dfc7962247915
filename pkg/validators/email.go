// Package validators contains the input checks of the public API. Error
// messages are the exact texts sent back to clients.
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailEmpty   = errors.New("Missing email")
	ErrEmailInvalid = errors.New("Invalid email")
)

func EmailValidator(e string) error {
	if strings.TrimSpace(e) == "" {
		return ErrEmailEmpty
	}

	if _, err := mail.ParseAddress(e); err != nil {
		return ErrEmailInvalid
	}

	return nil
}
