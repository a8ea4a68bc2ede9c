package app

import (
	"context"
	"regexp"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

var validPlanNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// RunOptions configuration for the Run method.
type RunOptions struct {
	// Plan names the recipe this run executes or revises.
	Plan string
	// Command is the argv to execute, possibly with {parameter} templates.
	Command []string
	// Inputs and Outputs declare the paths the command reads and writes.
	Inputs  []string
	Outputs []string
	// Parameters are the default values bound to the command template.
	Parameters map[string]string
	OutputMode string
}

// Run executes a command under provenance: inputs are checksummed before,
// outputs after, and the run is recorded as an activity of the named plan.
// The plan head is reused when the recipe is unchanged; otherwise a new
// plan version derived from the head is recorded first. A failed execution
// records no activity.
func (a *App) Run(ctx context.Context, opts RunOptions) (*domain.Activity, error) {
	if !validPlanNameRegex.MatchString(opts.Plan) {
		return nil, zerr.With(domain.ErrInvalidPlanName, "name", opts.Plan)
	}
	if len(opts.Command) == 0 {
		return nil, zerr.With(domain.ErrMissingCommand, "plan", opts.Plan)
	}

	sess, err := a.openSession()
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	inputs, err := relativize(sess.workspace, opts.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := relativize(sess.workspace, opts.Outputs)
	if err != nil {
		return nil, err
	}

	candidate := &domain.Plan{
		ID:         a.newID(),
		Name:       domain.NewInternedString(opts.Plan),
		Command:    opts.Command,
		Inputs:     inputs,
		Outputs:    outputs,
		Parameters: opts.Parameters,
		CreatedAt:  a.clock(),
	}
	if err := validateTemplates(candidate); err != nil {
		return nil, err
	}

	plan, err := a.resolvePlan(ctx, sess, candidate)
	if err != nil {
		return nil, err
	}

	var activity *domain.Activity
	err = a.execute(ctx, opts.OutputMode, func(ctx context.Context, tracer ports.Tracer) error {
		engine := a.engine(sess, tracer, a.blobs(sess.root))
		res, err := engine.Run(ctx, &domain.Invocation{Plan: plan, Parameters: opts.Parameters})
		if err != nil {
			return err
		}
		activity = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activity, nil
}

// validateTemplates renders the candidate's command and paths against its
// own defaults, so an unbound parameter fails before anything is recorded.
func validateTemplates(plan *domain.Plan) error {
	if _, err := domain.RenderCommand(plan, nil); err != nil {
		return err
	}
	if _, err := domain.RenderPaths(plan, plan.Inputs, nil); err != nil {
		return err
	}
	_, err := domain.RenderPaths(plan, plan.Outputs, nil)
	return err
}

// resolvePlan reuses the current head version when the candidate describes
// the same recipe, and otherwise records the candidate as the new head,
// derived from the previous one.
func (a *App) resolvePlan(ctx context.Context, s *session, candidate *domain.Plan) (*domain.Plan, error) {
	head, err := s.store.PlanHead(ctx, candidate.Name.String())
	if err != nil {
		return nil, err
	}
	if head != nil {
		if head.SameRecipe(candidate) {
			return head, nil
		}
		candidate.DerivedFrom = head.ID
	}

	if err := s.store.SavePlan(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}
