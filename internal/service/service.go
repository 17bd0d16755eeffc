// Package service implements the recipebox use cases on top of the stores.
// Every entry point that touches a user-owned entity resolves it, then
// runs query.CheckOwned before acting; an entity owned by someone else is
// reported exactly like a missing one.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/sse"
	"github.com/recipebox/recipebox-server/internal/store"
)

// Publisher receives change events. *events.Bus implements it.
type Publisher interface {
	Publish(event sse.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event) {}

// publisherOrNop lets services run without an event bus (tests, seeding).
func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// notFound is the message shared by absent and foreign entities.
func notFound(kind string) error {
	return domainerrors.NotFound(kind + " not found")
}

// translate maps store errors onto domain errors. Anything else is wrapped
// as an internal failure of op.
func translate(err error, kind, op string) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(kind + " not found").WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(kind + " already exists").WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation("invalid " + kind).WithCause(err)
	default:
		return fmt.Errorf("%s %s: %w", op, kind, err)
	}
}
