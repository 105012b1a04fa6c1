package domain

import "errors"

// ErrNotFound is returned when a requested trip is not part of the loaded
// trip list, or when a store has no value for a key.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when caller-supplied input fails a precondition
// (e.g. a settlement whose payer and payee are the same person). It is always
// raised before any network call.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")
