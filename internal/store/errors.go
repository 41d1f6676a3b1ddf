package store

import "errors"

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicateItem is returned when an item with the same model and MHD is
// already registered.
var ErrDuplicateItem = errors.New("store: item already registered")
