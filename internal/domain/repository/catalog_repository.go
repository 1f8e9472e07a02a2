package repository

import (
	"context"

	"github.com/diillson/aws-cur-sync/internal/domain/entity"
)

// CatalogRepository defines the calls made to the software catalog.
type CatalogRepository interface {
	// UpsertEntity creates or replaces the entity identified by its
	// identifier and blueprint.
	UpsertEntity(ctx context.Context, e entity.CatalogEntity) error
	SearchEntities(ctx context.Context, query entity.CatalogQuery) ([]entity.CatalogEntity, error)
	// DeleteEntity removes the entity. Deleting a missing entity succeeds.
	DeleteEntity(ctx context.Context, e entity.CatalogEntity) error
}
