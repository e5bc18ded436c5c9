package expr

import "strings"

// PathMappingType classifies how source locations relate to target locations.
type PathMappingType string

const (
	MappingShift      PathMappingType = "Shift"
	MappingMove       PathMappingType = "Move"
	MappingFactor     PathMappingType = "Factor"
	MappingDistribute PathMappingType = "Distribute"
	MappingIntroduce  PathMappingType = "Introduce"
	MappingCancel     PathMappingType = "Cancel"
	MappingTransform  PathMappingType = "Transform"
	MappingCombine    PathMappingType = "Combine"
	MappingRelate     PathMappingType = "Relate"
	MappingSubstitute PathMappingType = "Substitute"
)

// PathMapping records that the ToPaths of a result came from FromPaths of
// the input.
type PathMapping struct {
	FromPaths []ScopedPath
	Type      PathMappingType
	ToPaths   []ScopedPath
}

func (m PathMapping) Equal(other PathMapping) bool {
	return m.Type == other.Type && scopedPathsEqual(m.FromPaths, other.FromPaths) &&
		scopedPathsEqual(m.ToPaths, other.ToPaths)
}

func (m PathMapping) String() string {
	return joinScoped(m.FromPaths) + " " + string(m.Type) + " " + joinScoped(m.ToPaths)
}

func joinScoped(paths []ScopedPath) string {
	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func scopedPathsEqual(a, b []ScopedPath) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (m PathMapping) mergeable(other PathMapping) bool {
	if m.Type != other.Type || !scopedPathsEqual(m.FromPaths, other.FromPaths) {
		return false
	}
	switch m.Type {
	case MappingDistribute:
		return true
	case MappingIntroduce:
		return len(m.FromPaths) > 0
	}
	return false
}

func (m PathMapping) mergeWith(other PathMapping) PathMapping {
	merged := PathMapping{
		FromPaths: m.FromPaths,
		Type:      m.Type,
		ToPaths:   append([]ScopedPath(nil), m.ToPaths...),
	}
	for _, p := range other.ToPaths {
		if !containsScoped(merged.ToPaths, p) {
			merged.ToPaths = append(merged.ToPaths, p)
		}
	}
	return merged
}

func containsScoped(paths []ScopedPath, p ScopedPath) bool {
	for _, q := range paths {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// MergePathMappings unites the targets of Distribute mappings, and of
// Introduce mappings with non-empty sources, that share the same sources.
// Other mappings are kept as they are. Order follows first appearance.
func MergePathMappings(mappings []PathMapping) []PathMapping {
	var out []PathMapping
outer:
	for _, m := range mappings {
		for i, existing := range out {
			if existing.mergeable(m) {
				out[i] = existing.mergeWith(m)
				continue outer
			}
		}
		out = append(out, m)
	}
	return out
}
