package ports

import "go.trai.ch/modman/internal/core/domain"

// ProfileStore defines the interface for persisting profiles.
//
//go:generate go run go.uber.org/mock/mockgen -source=profile_store.go -destination=mocks/mock_profile_store.go -package=mocks
type ProfileStore interface {
	// Get retrieves the profile with the given name from the state directory root.
	// Returns nil, nil if not found.
	Get(root, name string) (*domain.Profile, error)

	// Put stores the profile under its name in the state directory root.
	Put(root string, profile *domain.Profile) error
}
