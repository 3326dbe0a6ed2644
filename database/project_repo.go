package database

import (
	"context"

	"github.com/rpupo63/aether-backend/errs"
	"github.com/rpupo63/aether-backend/models"
)

type ProjectRepo struct {
	store Store
}

func NewProjectRepo(store Store) *ProjectRepo {
	return &ProjectRepo{store}
}

// FindAll returns up to limit projects. A nil featured leaves the flag unfiltered.
func (r *ProjectRepo) FindAll(ctx context.Context, featured *bool, limit int64) ([]models.ProjectRecord, error) {
	if r.store == nil {
		return nil, errs.ErrStoreUnavailable
	}
	return r.store.Find(ctx, models.ProjectCollection, projectFilter(featured), limit)
}

// FindByID returns nil when no project has the id.
func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*models.ProjectRecord, error) {
	if r.store == nil {
		return nil, errs.ErrStoreUnavailable
	}
	return r.store.FindByID(ctx, models.ProjectCollection, id)
}

// Add inserts a new project and returns its id
func (r *ProjectRepo) Add(ctx context.Context, project models.Project) (string, error) {
	if r.store == nil {
		return "", errs.ErrStoreUnavailable
	}
	return r.store.Insert(ctx, models.ProjectCollection, project)
}

func projectFilter(featured *bool) Filter {
	filter := Filter{}
	if featured != nil {
		filter["featured"] = *featured
	}
	return filter
}
