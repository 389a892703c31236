package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modman/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the file walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// HasherNodeID is the unique identifier for the catalog hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// InstallIndexNodeID is the unique identifier for the install index Graft node.
	InstallIndexNodeID graft.ID = "adapter.fs.installs"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.Fingerprinter]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Fingerprinter, error) {
			return NewHasher(), nil
		},
	})

	graft.Register(graft.Node[ports.InstallIndex]{
		ID:        InstallIndexNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.InstallIndex, error) {
			return NewInstallIndex(), nil
		},
	})
}
