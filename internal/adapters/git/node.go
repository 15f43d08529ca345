package git

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/lingo/internal/core/ports"
)

// NodeID is the unique identifier for the template cloner Graft node.
const NodeID graft.ID = "adapter.git_clone"

func init() {
	graft.Register(graft.Node[ports.GitClone]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.GitClone, error) {
			return Clone, nil
		},
	})
}
