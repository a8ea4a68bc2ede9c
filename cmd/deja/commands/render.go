package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/ui/style"
)

// timeLayout is the timestamp layout for human-readable listings.
const timeLayout = time.DateTime

// renderStatus writes the staleness report in a stable, scriptable layout.
// Paths are listed in lexicographic order.
func renderStatus(w io.Writer, report *domain.StatusReport) {
	if report.Clean() {
		_, _ = fmt.Fprintf(w, "%s up to date\n", style.Check)
		return
	}

	if stale := report.SortedStaleOutputs(); len(stale) > 0 {
		_, _ = fmt.Fprintf(w, "%d stale output(s):\n", len(stale))
		for _, path := range stale {
			causes := report.StaleOutputs[domain.NewInternedString(path)]
			_, _ = fmt.Fprintf(w, "  %s %s  (%s)\n", style.Cross, path, strings.Join(causes.Sorted(), ", "))
		}
	}

	if ids := report.SortedStaleActivities(); len(ids) > 0 {
		_, _ = fmt.Fprintf(w, "%d stale recording(s) without outputs:\n", len(ids))
		for _, id := range ids {
			causes := report.StaleActivities[id]
			_, _ = fmt.Fprintf(w, "  %s %s  (%s)\n", style.Cross, shortID(id), strings.Join(causes.Sorted(), ", "))
		}
	}

	if len(report.ModifiedInputs) > 0 {
		_, _ = fmt.Fprintf(w, "changed: %s\n", strings.Join(report.ModifiedInputs.Sorted(), ", "))
	}
	if len(report.DeletedInputs) > 0 {
		_, _ = fmt.Fprintf(w, "deleted: %s\n", strings.Join(report.DeletedInputs.Sorted(), ", "))
	}
}

// renderUpdate summarizes what an update run recomputed and skipped.
func renderUpdate(w io.Writer, report *domain.UpdateReport) {
	if report.Empty() {
		_, _ = fmt.Fprintf(w, "%s nothing to update\n", style.Check)
		return
	}

	for _, res := range report.Executed {
		_, _ = fmt.Fprintf(w, "%s recomputed %s (%s)\n", style.Check, res.PlanName, strings.Join(res.Outputs, ", "))
	}
	for _, skip := range report.Skipped {
		_, _ = fmt.Fprintf(w, "%s skipped %s: missing %s\n", style.Warning, skip.PlanName, strings.Join(skip.MissingInputs, ", "))
	}
	_, _ = fmt.Fprintf(w, "%d plan(s) recomputed, %d skipped\n", len(report.Executed), len(report.Skipped))
}

// renderRerun prints the resolved chain, or the execution summary when it ran.
func renderRerun(w io.Writer, report *domain.RerunReport, executed bool) {
	for _, path := range report.Missing {
		_, _ = fmt.Fprintf(w, "%s no recorded activity generates %s\n", style.Warning, path)
	}

	if report.Empty() {
		if len(report.Missing) == 0 {
			_, _ = fmt.Fprintf(w, "%s nothing to re-execute\n", style.Check)
		}
		return
	}

	if executed {
		_, _ = fmt.Fprintf(w, "%s executed %d plan(s)\n", style.Check, len(report.Invocations))
		return
	}

	_, _ = fmt.Fprintf(w, "%d plan(s) would run:\n", len(report.Invocations))
	for i, inv := range report.Invocations {
		if len(inv.Parameters) > 0 {
			_, _ = fmt.Fprintf(w, "  %d. %s (%s)\n", i+1, inv.Plan.Name, formatParameters(inv.Parameters))
		} else {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, inv.Plan.Name)
		}
	}
}

// renderLog writes the recorded timeline. planNames maps plan version ids to
// logical names for the activity lines.
func renderLog(w io.Writer, records []domain.Record, planNames map[string]string) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "nothing recorded yet")
		return
	}

	for _, record := range records {
		switch r := record.(type) {
		case *domain.Activity:
			marker := ""
			if r.Invalidated() {
				marker = "  [reverted]"
			}
			_, _ = fmt.Fprintf(w, "%s  %s  run %s  %d in, %d out%s\n",
				shortID(r.ID), r.EndedAt.Format(timeLayout), planNames[r.PlanID],
				len(r.Usages), len(r.Generations), marker)
		case *domain.Plan:
			marker := ""
			if r.Deleted() {
				marker = "  [removed]"
			}
			_, _ = fmt.Fprintf(w, "%s  %s  plan %s recorded%s\n",
				shortID(r.ID), r.CreatedAt.Format(timeLayout), r.Name, marker)
		}
	}
}

// renderPlans lists plan versions oldest first, marking superseded and
// removed versions.
func renderPlans(w io.Writer, plans []*domain.Plan) {
	if len(plans) == 0 {
		_, _ = fmt.Fprintln(w, "no plans recorded")
		return
	}

	// The newest live version per name is the head; listing order is oldest
	// first, so the last live entry wins.
	heads := make(map[domain.InternedString]string, len(plans))
	for _, p := range plans {
		if !p.Deleted() {
			heads[p.Name] = p.ID
		}
	}

	for _, p := range plans {
		var marker string
		switch {
		case p.Deleted():
			marker = "  [removed]"
		case heads[p.Name] != p.ID:
			marker = "  [superseded]"
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %s%s\n", shortID(p.ID), p.CreatedAt.Format(timeLayout), p.Name, marker)
	}
}

// renderPlanShow writes one plan version in full, with its executions.
func renderPlanShow(w io.Writer, plan *domain.Plan, activities []*domain.Activity) {
	_, _ = fmt.Fprintf(w, "plan %s (version %s)\n", plan.Name, shortID(plan.ID))
	_, _ = fmt.Fprintf(w, "  command: %s\n", strings.Join(plan.Command, " "))
	if len(plan.Inputs) > 0 {
		_, _ = fmt.Fprintf(w, "  inputs:  %s\n", strings.Join(plan.Inputs, ", "))
	}
	if len(plan.Outputs) > 0 {
		_, _ = fmt.Fprintf(w, "  outputs: %s\n", strings.Join(plan.Outputs, ", "))
	}
	if len(plan.Parameters) > 0 {
		_, _ = fmt.Fprintf(w, "  parameters: %s\n", formatParameters(plan.Parameters))
	}
	if plan.DerivedFrom != "" {
		_, _ = fmt.Fprintf(w, "  derived from: %s\n", shortID(plan.DerivedFrom))
	}
	_, _ = fmt.Fprintf(w, "  created: %s\n", plan.CreatedAt.Format(timeLayout))
	if plan.Deleted() {
		_, _ = fmt.Fprintf(w, "  removed: %s\n", plan.DeletedAt.Format(timeLayout))
	}

	if len(activities) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "executions:")
	for _, act := range activities {
		marker := ""
		if act.Invalidated() {
			marker = "  [reverted]"
		}
		_, _ = fmt.Fprintf(w, "  %s  %s%s\n", shortID(act.ID), act.EndedAt.Format(timeLayout), marker)
	}
}

// shortID abbreviates a record id for listings.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// formatParameters renders a parameter map as sorted key=value pairs.
func formatParameters(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}
	return strings.Join(pairs, ", ")
}
