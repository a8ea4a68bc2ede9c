package domain

// Entity identifies one version of a file in the workspace. The same path
// appears as many entities over time, one per distinct checksum.
// It uses InternedString for the path because the same path is referenced by
// many usages and generations across the recorded history.
type Entity struct {
	Path     InternedString `json:"path"`
	Checksum string         `json:"checksum"`
}

// NewEntity creates an Entity from a workspace-relative path and its checksum.
func NewEntity(path, checksum string) Entity {
	return Entity{
		Path:     NewInternedString(path),
		Checksum: checksum,
	}
}

// Usage links an activity to an entity it consumed as input.
type Usage struct {
	Entity Entity `json:"entity"`
}

// Generation links an activity to an entity it produced as output.
type Generation struct {
	Entity Entity `json:"entity"`
}

// UsagePaths returns the paths of the given usages in declaration order.
func UsagePaths(usages []Usage) []InternedString {
	res := make([]InternedString, len(usages))
	for i, u := range usages {
		res[i] = u.Entity.Path
	}
	return res
}

// GenerationPaths returns the paths of the given generations in declaration order.
func GenerationPaths(generations []Generation) []InternedString {
	res := make([]InternedString, len(generations))
	for i, g := range generations {
		res[i] = g.Entity.Path
	}
	return res
}
