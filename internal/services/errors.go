package services

import (
	"errors"
	"fmt"

	"github.com/inkwell-press/apiserver/internal/store"
)

// Error taxonomy for the service layer. Handlers translate these into
// HTTP statuses: validation 400, credentials 401, forbidden 403, not
// found 404, conflict 409. Anything else is an internal failure.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidCredentials is returned for unknown emails and for
	// password mismatches alike, so a caller cannot tell which check
	// failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden marks an authenticated request by a non-owner.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound and ErrConflict are re-exported from the store so
	// callers don't depend on both packages.
	ErrNotFound = store.ErrNotFound
	ErrConflict = store.ErrConflict
)

// Finer-grained validation errors; each still matches ErrValidation
// under errors.Is.
var (
	ErrSelfFollow   = fmt.Errorf("%w: cannot follow yourself", ErrValidation)
	ErrNotFollowing = fmt.Errorf("%w: not following", ErrValidation)
)
