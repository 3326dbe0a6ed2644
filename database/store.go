package database

import (
	"context"

	"github.com/rpupo63/aether-backend/models"
)

// Filter restricts a listing to records whose fields equal the given values.
// Keys are stored field names, e.g. "featured".
type Filter map[string]any

// Store is a document store holding project records. Each implementation owns
// the conversion between its native identifier type and the string form handed
// to clients.
type Store interface {
	// Insert stores the project and returns the identifier the store assigned.
	Insert(ctx context.Context, collection string, project models.Project) (string, error)
	// Find returns up to limit records matching every pair in filter, in
	// store-native order. An empty filter matches all records.
	Find(ctx context.Context, collection string, filter Filter, limit int64) ([]models.ProjectRecord, error)
	// FindByID returns errs.ErrInvalidIdentifier for an id the store cannot
	// parse, and nil without an error when a well-formed id matches nothing.
	FindByID(ctx context.Context, collection string, id string) (*models.ProjectRecord, error)

	Name() string
	ListCollections(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}
