package ports

import "go.trai.ch/modman/internal/core/domain"

// Fingerprinter computes stable fingerprints of resolution inputs.
//
//go:generate mockgen -destination=mocks/mock_fingerprinter.go -package=mocks -source=hasher.go
type Fingerprinter interface {
	// CatalogHash returns a hash that changes whenever anything resolution reads changes.
	CatalogHash(catalog *domain.Catalog) string
}
