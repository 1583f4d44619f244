package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/uni-registration-api/pkg/database"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

// txRunner executes a unit of work atomically. database.Transactor is the production implementation.
type txRunner interface {
	WithinTx(ctx context.Context, fn database.TxFunc) error
}

// lookupError maps a repository read failure: missing rows become NOT_FOUND, anything else INTERNAL.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

// asAppError keeps typed errors raised inside a transaction and wraps the rest.
func asAppError(err error, internal string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, internal)
}
