package ports

import (
	"context"

	"go.trai.ch/modman/internal/core/domain"
)

// CatalogLoader defines the interface for loading the package catalog.
//
//go:generate go run go.uber.org/mock/mockgen -source=catalog_loader.go -destination=mocks/mock_catalog_loader.go -package=mocks
type CatalogLoader interface {
	// Load reads package descriptors and global option definitions from dir.
	Load(ctx context.Context, dir string) (*domain.Catalog, error)
}
