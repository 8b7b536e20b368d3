package flowchart

import (
	"reflect"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/mapstructure"
)

// Kind tags the four entity containers owned by a Workflow.
type Kind int

const (
	KindStep Kind = iota + 1
	KindTransition
	KindTransitionDefinition
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindStep:
		return "step"
	case KindTransition:
		return "transition"
	case KindTransitionDefinition:
		return "transition_definition"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Handle identifies the Workflow that owns an entity.
type Handle string

// Entity is anything held by a Collection.
type Entity interface {
	EntityName() string
	// Attributes returns the flat attribute mapping used for matching and transmission.
	Attributes() map[string]any
}

// renameable entities can have a rejected rename rolled back.
type renameable interface {
	setEntityName(string)
}

type ownedEntity interface {
	Entity
	bindWorkflow(Handle)
}

// Position is a 2D box coordinate, serialized as [x, y].
type Position [2]float64

func (p Position) X() float64 { return p[0] }
func (p Position) Y() float64 { return p[1] }

// Offset returns p moved by d on both axes.
func (p Position) Offset(d float64) Position {
	return Position{p[0] + d, p[1] + d}
}

func attributesOf(v any) map[string]any {
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return map[string]any{}
	}
	return out
}

func matchesAttributes(e Entity, attrs map[string]any) bool {
	if len(attrs) == 0 {
		return true
	}
	have := e.Attributes()
	for k, want := range attrs {
		got, ok := have[k]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// deepCopyMap copies an option tree so that no nested map, slice or pointer is
// shared with in.
func deepCopyMap(in map[string]any) (map[string]any, error) {
	if in == nil {
		return nil, nil
	}
	out, err := copystructure.Copy(in)
	if err != nil {
		return nil, validationError("options cannot be copied: "+err.Error(), nil)
	}
	return out.(map[string]any), nil
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
