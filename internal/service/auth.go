package service

import (
	"context"
	"errors"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/session"
)

// authenticate resolves token to a user id. Missing, unknown and expired
// tokens are all Unauthorized.
func authenticate(ctx context.Context, sessions *session.Store, token string) (model.RecordID, error) {
	if token == "" {
		return model.RecordID{}, apperr.Unauthorized()
	}

	id, err := sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return model.RecordID{}, apperr.Unauthorized()
		}

		return model.RecordID{}, apperr.Internal(err)
	}

	return id, nil
}
