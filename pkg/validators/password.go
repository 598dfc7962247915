package validators

import "errors"

var (
	ErrPasswordEmpty   = errors.New("Missing password")
	ErrPasswordTooLong = errors.New("Password is too long")
)

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) > 255 {
		return ErrPasswordTooLong
	}

	return nil
}
