package devtools

import "github.com/quartzlabs/devtools/reflected"

// ToolVTable is an immutable, copyable bundle of function values closing
// over one concrete tool type. Each function implements one capability
// operation in terms of the concrete type's real implementation; no runtime
// type inspection happens inside a vtable function. Only the selection of
// which vtable to call is dynamic, via the Registry.
type ToolVTable struct {
	// Describe looks up the live instance, if present, and describes it.
	Describe func(s *State) (reflected.Value, bool)

	// AsTool looks up the live instance and reinterprets it as the
	// capability interface.
	AsTool func(s *State) (Tool, bool)

	// FromReflected reconstructs a concrete instance from an opaque value
	// and boxes it behind the capability interface. Reports false when the
	// opaque form's shape does not match the type.
	FromReflected func(v reflected.Value) (Tool, bool)
}

// CommandVTable is the per-type dispatch table for a command type.
type CommandVTable struct {
	// FromReflected reconstructs a concrete command from an opaque value.
	FromReflected func(v reflected.Value) (Command, bool)
}

// toolVTableFor builds the vtable for tool type T once, at a call site that
// knows T statically.
func toolVTableFor[T any, PT ToolPtr[T]]() ToolVTable {
	key := reflected.KeyFor[T]()
	return ToolVTable{
		Describe: func(s *State) (reflected.Value, bool) {
			live, ok := s.lookup(key)
			if !ok {
				return reflected.Value{}, false
			}
			return reflected.Describe(live), true
		},
		AsTool: func(s *State) (Tool, bool) {
			return s.lookup(key)
		},
		FromReflected: func(v reflected.Value) (Tool, bool) {
			value, ok := reflected.As[T](v)
			if !ok {
				return nil, false
			}
			return PT(&value), true
		},
	}
}

// commandVTableFor builds the vtable for command type C once, at
// registration time.
func commandVTableFor[C Command]() CommandVTable {
	return CommandVTable{
		FromReflected: func(v reflected.Value) (Command, bool) {
			cmd, ok := reflected.As[C](v)
			if !ok {
				return nil, false
			}
			return cmd, true
		},
	}
}
