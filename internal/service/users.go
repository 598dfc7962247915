package service

import (
	"context"
	"errors"

	"bitwise74/files-api/internal/apperr"
	"bitwise74/files-api/internal/model"
	"bitwise74/files-api/internal/repository"
	"bitwise74/files-api/internal/session"
	"bitwise74/files-api/pkg/security"
	"bitwise74/files-api/pkg/validators"
)

type Users struct {
	sessions *session.Store
	repo     repository.Repository
	argon    *security.ArgonHash
}

func NewUsers(sessions *session.Store, repo repository.Repository, argon *security.ArgonHash) *Users {
	return &Users{sessions: sessions, repo: repo, argon: argon}
}

func (u *Users) Register(ctx context.Context, email, password string) (*model.User, error) {
	if err := validators.EmailValidator(email); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	if err := validators.PasswordValidator(password); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	_, err := u.repo.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("Already exists")
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	hash, err := u.argon.GenerateFromPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &model.User{Email: email, PasswordHash: hash}
	if err := u.repo.InsertUser(ctx, user); err != nil {
		// Lost a race against another registration
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Already exists")
		}

		return nil, apperr.Internal(err)
	}

	return user, nil
}

// Connect checks the credentials and opens a session
func (u *Users) Connect(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Unauthorized()
	}

	user, err := u.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", apperr.Unauthorized()
		}

		return "", apperr.Internal(err)
	}

	ok, err := u.argon.VerifyPasswd(password, user.PasswordHash)
	if err != nil && !errors.Is(err, security.ErrInvalidHash) {
		return "", apperr.Internal(err)
	}
	if !ok {
		return "", apperr.Unauthorized()
	}

	token, err := u.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}

	return token, nil
}

// Disconnect ends the session behind token
func (u *Users) Disconnect(ctx context.Context, token string) error {
	if _, err := authenticate(ctx, u.sessions, token); err != nil {
		return err
	}

	existed, err := u.sessions.Revoke(ctx, token)
	if err != nil {
		return apperr.Internal(err)
	}

	// Expired between the two calls
	if !existed {
		return apperr.Unauthorized()
	}

	return nil
}

func (u *Users) Me(ctx context.Context, token string) (*model.User, error) {
	id, err := authenticate(ctx, u.sessions, token)
	if err != nil {
		return nil, err
	}

	user, err := u.repo.FindUserByID(ctx, id)
	if err != nil {
		// Sessions of users that no longer exist are worthless
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized()
		}

		return nil, apperr.Internal(err)
	}

	return user, nil
}
