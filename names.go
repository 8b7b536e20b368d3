package flowchart

import (
	"strings"

	"github.com/google/uuid"
)

const cloneNameInfix = "_clone_"

// IDGenerator produces random suffixes for cloned names.
type IDGenerator func() string

// RandomID returns a short random hex identifier.
func RandomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NameRegistry hands out clone names that were never issued before in this session
// and are not taken in the target container.
type NameRegistry struct {
	generate IDGenerator
	issued   map[string]struct{}
}

// NewNameRegistry builds a registry using gen, or RandomID when gen is nil.
func NewNameRegistry(gen IDGenerator) *NameRegistry {
	if gen == nil {
		gen = RandomID
	}
	return &NameRegistry{
		generate: gen,
		issued:   make(map[string]struct{}),
	}
}

// maxNameAttempts bounds retries when a generator keeps colliding.
const maxNameAttempts = 64

// Next returns base + "_clone_" + suffix. taken reports names already used by a container.
func (r *NameRegistry) Next(base string, taken func(string) bool) (string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := base + cloneNameInfix + r.generate()
		if _, seen := r.issued[name]; seen {
			continue
		}
		if taken != nil && taken(name) {
			continue
		}
		r.issued[name] = struct{}{}
		return name, nil
	}
	return "", validationError("unable to generate a unique clone name", map[string]any{"base": base})
}

// Issued reports whether name was handed out by this registry.
func (r *NameRegistry) Issued(name string) bool {
	_, ok := r.issued[name]
	return ok
}
