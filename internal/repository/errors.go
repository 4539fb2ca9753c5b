package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRunExists is returned when a run already exists for a client and exercice.
	ErrRunExists = errors.New("run already exists for this client and exercice")
)
