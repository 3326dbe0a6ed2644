package database

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rpupo63/aether-backend/errs"
)

// Store types selectable through DB_TYPE.
const (
	TypeMongo    = "mongo"
	TypePostgres = "postgres"
	TypeMemory   = "memory"
)

type Database struct {
	store       Store
	projectRepo *ProjectRepo
}

// New wires every repository to the same store. A nil store is allowed: the
// repositories then fail with errs.ErrStoreUnavailable.
func New(store Store) Database {
	return Database{
		store:       store,
		projectRepo: NewProjectRepo(store),
	}
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

// Store returns the underlying store, or nil when none is connected.
func (d Database) Store() Store {
	return d.store
}

func (d Database) Available() bool {
	return d.store != nil
}

func (d Database) Close(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	return d.store.Close(ctx)
}

type Options struct {
	Type        string
	URL         string
	Name        string
	ReplicaURLs []string
	Logger      zerolog.Logger
}

// Open connects the store selected by opts.Type. An empty type means mongo.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Type) {
	case "", TypeMongo, "mongodb":
		if opts.URL == "" {
			return nil, errs.NewEnvironmentVariableError("DATABASE_URL")
		}
		store, err := ConnectMongo(ctx, opts.URL, opts.Name)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypePostgres, "supa":
		if opts.URL == "" {
			return nil, errs.NewEnvironmentVariableError("DATABASE_URL")
		}
		store, err := OpenPostgres(ctx, PostgresConfig{
			DSN:         opts.URL,
			ReplicaDSNs: opts.ReplicaURLs,
			Logger:      opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeMemory:
		store, err := NewMemoryStore()
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errs.NewUnsupportedStoreError(opts.Type)
	}
}
