package recall

import (
	"errors"

	"github.com/hazyhaar/recallwatch/internal/store"
)

// ErrInvalidInput is returned when user input fails validation.
var ErrInvalidInput = errors.New("recall: invalid input")

// ErrUnknownModel is returned when a model key is not in the catalogue.
var ErrUnknownModel = errors.New("recall: unknown product model")

// ErrInvalidCatalog is returned when the source catalogue fails validation.
var ErrInvalidCatalog = errors.New("recall: invalid catalog")

// Re-exported store errors.
var (
	ErrNotFound      = store.ErrNotFound
	ErrDuplicateItem = store.ErrDuplicateItem
)
