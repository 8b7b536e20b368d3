// Package render keeps a drawing surface in sync with a workflow: every step is a
// box, every (source step, transition) pair is a connection to the transition's
// target box.
package render

import (
	"github.com/goliatone/go-flowchart"
)

// Element is the canvas handle of a mounted step box.
type Element string

// Connection is the canvas handle of a drawn connection.
type Connection string

// ConnectionConfig is passed to every Connect call.
type ConnectionConfig struct {
	Detachable bool
	Label      string
}

// DefaultConnectionConfig is used unless WithConnectionConfig overrides it.
var DefaultConnectionConfig = ConnectionConfig{Detachable: false}

// Canvas is the drawing surface. Implementations place boxes using step.Position
// when it is set.
type Canvas interface {
	MountBox(step *flowchart.Step) (Element, error)
	RenderBox(el Element, step *flowchart.Step) error
	DetachBox(el Element) error
	Connect(from, to Element, transition *flowchart.Transition, cfg ConnectionConfig) (Connection, error)
	Disconnect(conn Connection) error
}
