package app

import (
	"context"

	"github.com/hylla/pipeline/internal/domain"
)

// Catalog is the external source of the column set and the initial collection.
type Catalog interface {
	ListColumns(context.Context) ([]domain.Column, error)
	ListItems(context.Context) ([]domain.Item, error)
}

// CatalogWriter creates catalog rows. Only seeding writes to the catalog.
type CatalogWriter interface {
	Catalog
	CreateColumn(context.Context, domain.Column) error
	CreateItem(context.Context, domain.Item) error
	Reset(context.Context) error
}
