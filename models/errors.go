package models

import "errors"

// Sentinel errors shared by repositories, storage and services.
// Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrValidation       = errors.New("validation error")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrStorageFailure   = errors.New("storage failure")
	ErrVersionConflict  = errors.New("version conflict")
	ErrConcurrentUpdate = errors.New("concurrent update")
)
