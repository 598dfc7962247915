package internal

import (
	"context"
	"errors"

	"bitwise74/files-api/internal/blob"
	"bitwise74/files-api/internal/repository"
	"bitwise74/files-api/internal/service"
	"bitwise74/files-api/internal/session"
)

// Deps holds the clients and services shared by the HTTP handlers and the
// workers. Everything is constructed once at startup.
type Deps struct {
	Repo     repository.Repository
	Blobs    blob.Store
	Sessions *session.Store
	Queue    service.Queue

	Users       *service.Users
	Files       *service.Files
	Thumbnailer *service.Thumbnailer

	closers []func(context.Context) error
}

// OnClose registers fn to run on Close. Closers run in reverse order.
func (d *Deps) OnClose(fn func(context.Context) error) {
	d.closers = append(d.closers, fn)
}

func (d *Deps) Close(ctx context.Context) error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil

	return errors.Join(errs...)
}
