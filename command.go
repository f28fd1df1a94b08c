package devtools

import "github.com/quartzlabs/devtools/reflected"

// Command is a one-shot, self-contained description of a state mutation. A
// command is applied at most once and then discarded; it has no identity
// beyond its type and payload.
//
// Command types registered with RegisterCommand must be value types whose
// Name method works on the zero value.
type Command interface {
	// Name returns the human-readable name of the command, as a console
	// layer might accept it.
	Name() string

	// Apply executes the mutation against the live tool store. It runs to
	// completion, never fails, and must not be invoked twice.
	Apply(s *State)
}

// Enable is the generic command that switches a tool type on. The carried
// snapshot exists only to give the command a reflectable payload shape; its
// field values are not consulted.
type Enable[T any, PT ToolPtr[T]] struct {
	Tool T `json:"tool"`
}

// Name returns "Enable[<tool name>]".
func (Enable[T, PT]) Name() string {
	return commandName[T, PT]("Enable")
}

// Apply sets the live tool's enabled flag to true. A missing live instance
// is a silent no-op.
func (Enable[T, PT]) Apply(s *State) {
	if live, ok := s.lookup(reflected.KeyFor[T]()); ok {
		live.SetEnabled(true)
	}
}

// Disable is the generic command that switches a tool type off.
type Disable[T any, PT ToolPtr[T]] struct {
	Tool T `json:"tool"`
}

// Name returns "Disable[<tool name>]".
func (Disable[T, PT]) Name() string {
	return commandName[T, PT]("Disable")
}

// Apply sets the live tool's enabled flag to false. A missing live instance
// is a silent no-op.
func (Disable[T, PT]) Apply(s *State) {
	if live, ok := s.lookup(reflected.KeyFor[T]()); ok {
		live.SetEnabled(false)
	}
}

// Toggle is the generic command that flips a tool type's enabled flag.
//
// Toggling is defined relative to the snapshot the command carries, not the
// live value at apply time: the live flag is set to the negation of the
// snapshot's flag. Callers that construct a Toggle from a freshly described
// live value get the expected "flip the live value" behavior; a Toggle built
// from a stale snapshot toggles relative to that snapshot.
type Toggle[T any, PT ToolPtr[T]] struct {
	Tool T `json:"tool"`
}

// Name returns "Toggle[<tool name>]".
func (Toggle[T, PT]) Name() string {
	return commandName[T, PT]("Toggle")
}

// Apply sets the live tool's enabled flag to the negation of the snapshot
// flag. A missing live instance is a silent no-op.
func (c Toggle[T, PT]) Apply(s *State) {
	snapshot := c.Tool
	next := !PT(&snapshot).IsEnabled()
	if live, ok := s.lookup(reflected.KeyFor[T]()); ok {
		live.SetEnabled(next)
	}
}

// commandName renders "<verb>[<tool name>]" using the tool's resolved
// display name so that console references stay consistent with tool listings.
func commandName[T any, PT ToolPtr[T]](verb string) string {
	var zero T
	return verb + "[" + ToolName(PT(&zero)) + "]"
}
