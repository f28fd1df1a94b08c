package devtools

import "github.com/quartzlabs/devtools/reflected"

// State is the live store of tool instances, one per registered tool type.
//
// State performs no locking of its own: the host must guarantee that the
// store is populated before concurrent use begins and that mutations
// (command applications) are serialized. Dispatcher provides that
// serialization for hosts that want it.
type State struct {
	tools map[reflected.TypeKey]Tool
	order []reflected.TypeKey
}

// NewState creates an empty tool store.
func NewState() *State {
	return &State{
		tools: make(map[reflected.TypeKey]Tool),
	}
}

func (s *State) lookup(key reflected.TypeKey) (Tool, bool) {
	t, ok := s.tools[key]
	return t, ok
}

func (s *State) put(key reflected.TypeKey, t Tool) {
	if _, exists := s.tools[key]; !exists {
		s.order = append(s.order, key)
	}
	s.tools[key] = t
}

func (s *State) has(key reflected.TypeKey) bool {
	_, ok := s.tools[key]
	return ok
}

// Len returns the number of live tool instances.
func (s *State) Len() int {
	return len(s.tools)
}

// Keys returns the type keys of all live tools in registration order.
func (s *State) Keys() []reflected.TypeKey {
	keys := make([]reflected.TypeKey, len(s.order))
	copy(keys, s.order)
	return keys
}
