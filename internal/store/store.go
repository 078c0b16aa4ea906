package store

import (
	"errors"

	"github.com/adihub26/kicks-shoe-store/internal/models"
)

// ErrPersistence wraps store write failures. Read failures are recovered
// locally by returning an empty collection.
var ErrPersistence = errors.New("persistence failure")

// Store holds the full order collection in a single named slot. Every
// mutation round-trips the whole collection; acceptable because the dataset
// is small and the engine is the only writer.
type Store interface {
	Load() ([]*models.Order, error)
	SaveAll(orders []*models.Order) error
}
