package query

import (
	"context"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// Run executes one plan invocation under the workspace write lock and
// records the resulting activity.
func (e *Engine) Run(ctx context.Context, inv *domain.Invocation) (*domain.Activity, error) {
	unlock, err := e.workspace.Lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = unlock() }()

	return e.invoke(ctx, inv)
}

// invoke renders a plan invocation, executes it, and records the resulting
// activity. Declared inputs must exist before the command runs; declared
// outputs must exist afterwards. Nothing is recorded for a failed execution.
func (e *Engine) invoke(ctx context.Context, inv *domain.Invocation) (*domain.Activity, error) {
	inputs, err := domain.RenderPaths(inv.Plan, inv.Plan.Inputs, inv.Parameters)
	if err != nil {
		return nil, err
	}
	outputs, err := domain.RenderPaths(inv.Plan, inv.Plan.Outputs, inv.Parameters)
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, inv.Plan, inv.Parameters, inputs, outputs)
}

// execute runs one plan invocation against concrete input and output paths
// and appends the resulting activity atomically. Input checksums capture
// the state the command consumed, output checksums the state it left
// behind.
func (e *Engine) execute(
	ctx context.Context,
	plan *domain.Plan,
	params map[string]string,
	inputs, outputs []string,
) (*domain.Activity, error) {
	usages := make([]domain.Usage, 0, len(inputs))
	for _, path := range inputs {
		sum, err := e.checksum(path)
		if err != nil {
			return nil, err
		}
		if sum == "" {
			return nil, zerr.With(zerr.With(
				domain.ErrInputDeleted,
				"path", path),
				"plan", plan.Name.String())
		}
		usages = append(usages, domain.Usage{Entity: domain.NewEntity(path, sum)})
	}

	started := e.clock()
	if err := e.runCommand(ctx, plan, params); err != nil {
		return nil, err
	}
	ended := e.clock()

	generations := make([]domain.Generation, 0, len(outputs))
	for _, path := range outputs {
		sum, err := e.checksum(path)
		if err != nil {
			return nil, err
		}
		if sum == "" {
			return nil, zerr.With(zerr.With(
				domain.ErrOutputNotProduced,
				"path", path),
				"plan", plan.Name.String())
		}
		generations = append(generations, domain.Generation{Entity: domain.NewEntity(path, sum)})
	}

	activity := &domain.Activity{
		ID:          e.newID(),
		PlanID:      plan.ID,
		StartedAt:   started,
		EndedAt:     ended,
		Parameters:  params,
		Usages:      usages,
		Generations: generations,
	}
	if err := e.store.AppendActivity(ctx, activity); err != nil {
		return nil, zerr.Wrap(err, "failed to record the execution")
	}

	e.keepBlobs(generations)
	return activity, nil
}

// runCommand executes the rendered plan command inside a span, streaming
// process output to it.
func (e *Engine) runCommand(ctx context.Context, plan *domain.Plan, params map[string]string) error {
	ctx, span := e.tracer.Start(ctx, plan.Name.String(), ports.WithAttribute("plan", plan.ID))
	defer span.End()

	inv := &domain.Invocation{Plan: plan, Parameters: params, Dir: e.workspace.Root()}
	if err := e.executor.Execute(ctx, inv, e.environment(), span, span); err != nil {
		span.RecordError(err)
		return zerr.With(err, "plan", plan.Name.String())
	}
	return nil
}

func (e *Engine) checksum(path string) (string, error) {
	sum, err := e.workspace.Checksum(path)
	if err != nil {
		return "", zerr.With(err, "path", path)
	}
	return sum, nil
}

// keepBlobs snapshots freshly generated content so a later revert can
// restore it. Best effort: a full blob store never blocks an execution
// from being recorded.
func (e *Engine) keepBlobs(generations []domain.Generation) {
	if e.blobs == nil {
		return
	}
	for _, gen := range generations {
		if e.blobs.Has(gen.Entity.Checksum) {
			continue
		}
		f, err := e.workspace.Open(gen.Entity.Path.String())
		if err != nil {
			continue
		}
		_ = e.blobs.Put(gen.Entity.Checksum, f)
		_ = f.Close()
	}
}
