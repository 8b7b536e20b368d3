package gridview

import "context"

// Type is the visibility of a saved view.
type Type string

const (
	TypePrivate Type = "private"
	TypePublic  Type = "public"
)

// State is the part of the grid state a view captures.
type State struct {
	GridView string         `json:"gridView,omitempty" yaml:"grid_view,omitempty"`
	Filters  map[string]any `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sorters  map[string]any `json:"sorters,omitempty" yaml:"sorters,omitempty"`
}

// Grid is the datagrid a Manager drives.
type Grid interface {
	// Name is the grid input name stamped on every view.
	Name() string
	State() State
	InitialState() State
	UpdateState(State)
	Fetch(ctx context.Context) error
}

// View is a saved filter and sorter configuration of a grid.
type View struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string         `json:"name" yaml:"name"`
	Label    string         `json:"label" yaml:"label"`
	Type     Type           `json:"type" yaml:"type"`
	GridName string         `json:"grid_name" yaml:"grid_name"`
	Filters  map[string]any `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sorters  map[string]any `json:"sorters,omitempty" yaml:"sorters,omitempty"`
}

// ToGridState returns the grid state the view selects.
func (v View) ToGridState() State {
	return State{
		GridView: v.Name,
		Filters:  copyMap(v.Filters),
		Sorters:  copyMap(v.Sorters),
	}
}

// Choice is one entry of the view selector.
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Permissions are the view operations the current user may perform.
type Permissions struct {
	Create     bool `json:"CREATE" yaml:"create"`
	Edit       bool `json:"EDIT" yaml:"edit"`
	Delete     bool `json:"DELETE" yaml:"delete"`
	Share      bool `json:"SHARE" yaml:"share"`
	EditShared bool `json:"EDIT_SHARED" yaml:"edit_shared"`
}

// Action is a toolbar action and whether it is currently available.
type Action struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

const (
	ActionSave   = "save"
	ActionSaveAs = "save_as"
	ActionShare  = "share"
	ActionDelete = "delete"
)

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func mergeState(base, over State) State {
	out := State{
		GridView: base.GridView,
		Filters:  copyMap(base.Filters),
		Sorters:  copyMap(base.Sorters),
	}
	if over.GridView != "" {
		out.GridView = over.GridView
	}
	if over.Filters != nil {
		out.Filters = copyMap(over.Filters)
	}
	if over.Sorters != nil {
		out.Sorters = copyMap(over.Sorters)
	}
	return out
}
