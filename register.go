package devtools

import "github.com/quartzlabs/devtools/reflected"

// RegisterTool records tool type T in the registry, seeds the state store
// with a default-constructed instance (honoring Defaulter) unless one is
// already live, builds T's vtable, and registers the Enable, Disable, and
// Toggle command types for T.
//
// Safe to call multiple times for the same type: the vtable is overwritten
// with an equivalent one and the live instance is preserved.
func RegisterTool[T any, PT ToolPtr[T]](r *Registry, s *State) {
	var value T
	if d, ok := any(PT(&value)).(Defaulter); ok {
		d.SetDefaults()
	}
	registerToolValue[T, PT](r, s, value, false)
}

// InsertTool is RegisterTool with an explicit initial value. Unlike
// RegisterTool, an existing live instance is replaced: the caller stated
// intent about the tool's state.
func InsertTool[T any, PT ToolPtr[T]](r *Registry, s *State, value T) {
	registerToolValue[T, PT](r, s, value, true)
}

func registerToolValue[T any, PT ToolPtr[T]](r *Registry, s *State, value T, replace bool) {
	key := reflected.KeyFor[T]()
	r.putTool(ToolEntry{Key: key, Name: ToolName(PT(&value))}, toolVTableFor[T, PT]())
	if replace || !s.has(key) {
		s.put(key, PT(&value))
	}
	RegisterCommand[Enable[T, PT]](r)
	RegisterCommand[Disable[T, PT]](r)
	RegisterCommand[Toggle[T, PT]](r)
}

// RegisterCommand records command type C and stores its vtable. Idempotent:
// re-registering overwrites with an equivalent entry.
func RegisterCommand[C Command](r *Registry) {
	var zero C
	r.putCommand(CommandEntry{
		Key:  reflected.KeyFor[C](),
		Name: zero.Name(),
	}, commandVTableFor[C]())
}
