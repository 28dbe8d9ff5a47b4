// Package service implements the vault's business logic on top of the
// store and storage layers: folder lifecycle, content aggregation,
// breadcrumbs, and the photo linking protocol.
package service

import "errors"

// Sentinel errors matched by handlers with errors.Is. Wrapped errors
// carry the operation context; these carry the caller-facing meaning.
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrStorageUnavailable = errors.New("object storage not configured")
)
