package profile

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/modman/internal/core/ports"
)

// NodeID is the unique identifier for the profile store Graft node.
const NodeID graft.ID = "adapter.profile_store"

func init() {
	graft.Register(graft.Node[ports.ProfileStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProfileStore, error) {
			return NewStore(), nil
		},
	})
}
