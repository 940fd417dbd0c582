// Package store is the document store client: a push/get interface over named
// collections, scoped by the caller's bearer token. The store never filters by
// owner; callers must do that on every read.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/AnshRaj112/serenify-journal/internal/apperr"
)

const (
	CollectionEntries = "entries"
	CollectionHabits  = "habits"
	CollectionMoods   = "moods"
)

// ErrUnauthorized is returned when the token is missing or rejected.
var ErrUnauthorized = apperr.ErrUnauthorized

// Item is one record of a collection snapshot.
type Item struct {
	Key   string
	Value json.RawMessage
}

// Snapshot is a full, unfiltered read of one collection.
type Snapshot []Item

type Store interface {
	// Push stores record under a generated key and returns that key.
	Push(ctx context.Context, collection string, record any, token string) (string, error)
	// Get returns every record of the collection. An absent collection yields an
	// empty snapshot, not an error.
	Get(ctx context.Context, collection string, token string) (Snapshot, error)
}

// TokenVerifier checks a bearer token and returns the user id it was issued to.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

func checkToken(v TokenVerifier, token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	if v == nil {
		return nil
	}
	if _, err := v.VerifyToken(token); err != nil {
		return errors.Join(ErrUnauthorized, err)
	}
	return nil
}
