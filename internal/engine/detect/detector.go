// Package detect diffs the current workspace state against the entity
// checksums recorded in the provenance log.
package detect

import (
	"go.trai.ch/deja/internal/core/domain"
	"go.trai.ch/deja/internal/core/ports"
	"go.trai.ch/zerr"
)

// Detector compares recorded entities against the working tree. Checksums
// are computed at most once per path per call, so repeated references to the
// same file across many activities cost one read.
type Detector struct {
	workspace ports.Workspace
	settings  *domain.Settings
}

func NewDetector(workspace ports.Workspace, settings *domain.Settings) *Detector {
	return &Detector{workspace: workspace, settings: settings}
}

type pathState struct {
	exists   bool
	checksum string
}

// Detect classifies every entity recorded by the live activities of g:
// a usage whose current checksum differs is modified, a usage or generation
// whose path no longer exists is deleted. Generations that were superseded
// by a later activity are not examined, and ignored paths are skipped
// entirely.
func (d *Detector) Detect(g *domain.ActivityGraph) (*domain.ChangeSet, error) {
	changes := &domain.ChangeSet{}
	seen := make(map[domain.InternedString]pathState)

	for _, id := range g.Nodes() {
		act := g.Activity(id)

		for _, usage := range act.Usages {
			state, err := d.lookup(seen, usage.Entity.Path)
			if err != nil {
				return nil, err
			}
			switch {
			case state == nil:
			case !state.exists:
				changes.Deleted = append(changes.Deleted, domain.ActivityEntity{Activity: act, Entity: usage.Entity})
			case state.checksum != usage.Entity.Checksum:
				changes.Modified = append(changes.Modified, domain.ActivityEntity{Activity: act, Entity: usage.Entity})
			}
		}

		for _, gen := range act.Generations {
			if g.Overridden(id, gen.Entity.Path) {
				continue
			}
			state, err := d.lookup(seen, gen.Entity.Path)
			if err != nil {
				return nil, err
			}
			if state != nil && !state.exists {
				changes.Deleted = append(changes.Deleted, domain.ActivityEntity{Activity: act, Entity: gen.Entity})
			}
		}
	}

	return changes, nil
}

// lookup resolves the current state of path, consulting the per-call cache
// first. A nil state means the path is ignored.
func (d *Detector) lookup(seen map[domain.InternedString]pathState, path domain.InternedString) (*pathState, error) {
	if d.settings != nil && d.settings.Ignored(path.String()) {
		return nil, nil
	}
	if state, ok := seen[path]; ok {
		return &state, nil
	}

	state := pathState{}
	if d.workspace.Exists(path.String()) {
		sum, err := d.workspace.Checksum(path.String())
		if err != nil {
			return nil, zerr.With(err, "path", path.String())
		}
		state = pathState{exists: sum != "", checksum: sum}
	}

	seen[path] = state
	return &state, nil
}
