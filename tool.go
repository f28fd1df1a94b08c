package devtools

import (
	"strings"

	"github.com/quartzlabs/devtools/reflected"
)

// Tool is a registrable, long-lived feature switch. Exactly one live
// instance per tool type exists in a State at any time; it is created at
// registration and mutated in place by commands.
//
// Implementations must be mutable through their pointer receiver and must be
// describable by the reflected facility (exported, JSON-taggable fields).
type Tool interface {
	// SetEnabled turns the tool on (true) or off (false).
	SetEnabled(enabled bool)

	// IsEnabled reports whether the tool is currently enabled.
	IsEnabled() bool
}

// Named is implemented by tools that override the display name derived from
// their type.
type Named interface {
	Name() string
}

// Defaulter is implemented by tools whose default state differs from the
// zero value. RegisterTool invokes it on the freshly constructed instance
// before seeding the State.
type Defaulter interface {
	SetDefaults()
}

// ToolPtr constrains PT to be a pointer to T that satisfies Tool. It lets
// generic registration code accept value types while mutating them through
// their pointer method set.
type ToolPtr[T any] interface {
	*T
	Tool
}

// ToolName resolves the display name for a tool: its own Name method when
// implemented, otherwise the compact name of its concrete type.
func ToolName(t Tool) string {
	if n, ok := t.(Named); ok {
		if name := strings.TrimSpace(n.Name()); name != "" {
			return name
		}
	}
	return reflected.ShortNameOf(t)
}
