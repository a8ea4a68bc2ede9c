package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/deja/internal/core/ports"
)

// NodeID identifies the logger node in the dependency graph.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(context.Context) (ports.Logger, error) {
			return New(), nil
		},
	})
}
