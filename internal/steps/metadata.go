package steps

import (
	"strings"

	"github.com/roach88/stepsolver/internal/expr"
)

// MetadataKey names an explanation or a skill, as "category.name".
type MetadataKey string

// Key joins a category and a name into a MetadataKey.
func Key(category, name string) MetadataKey { return MetadataKey(category + "." + name) }

// Category returns the part before the first dot.
func (k MetadataKey) Category() string {
	category, _, _ := strings.Cut(string(k), ".")
	return category
}

// Name returns the part after the first dot, or the whole key.
func (k MetadataKey) Name() string {
	category, name, ok := strings.Cut(string(k), ".")
	if !ok {
		return category
	}
	return name
}

// Metadata is a key with parameters. Each parameter keeps its origin, so
// it can be traced back to the expression it was taken from.
type Metadata struct {
	Key    MetadataKey
	Params []*expr.Expression
}

func NewMetadata(key MetadataKey, params ...*expr.Expression) *Metadata {
	return &Metadata{Key: key, Params: params}
}

// String is the key followed by the parameters, for logs.
func (m *Metadata) String() string {
	if m == nil {
		return ""
	}
	if len(m.Params) == 0 {
		return string(m.Key)
	}
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		parts[i] = p.String()
	}
	return string(m.Key) + "(" + strings.Join(parts, ", ") + ")"
}
