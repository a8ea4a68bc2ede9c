package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/deja/internal/adapters/logger"
	"go.trai.ch/deja/internal/core/ports"
)

// NodeID identifies the executor node in the dependency graph.
const NodeID graft.ID = "adapter.executor"

func init() {
	graft.Register(graft.Node[ports.Executor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Executor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewExecutor(log), nil
		},
	})
}
