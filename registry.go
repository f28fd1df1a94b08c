package devtools

import (
	"sync"

	"github.com/quartzlabs/devtools/reflected"
)

// ToolEntry describes a registered tool type.
type ToolEntry struct {
	Key  reflected.TypeKey `json:"key"`
	Name string            `json:"name"`
}

// CommandEntry describes a registered command type.
type CommandEntry struct {
	Key  reflected.TypeKey `json:"key"`
	Name string            `json:"name"`
}

// Registry maps type keys to the vtables built at registration time. It is
// an explicitly owned instance: create one during startup and inject it into
// the layers that need lookup.
//
// Registration is expected to complete during single-threaded startup;
// afterwards lookups are safe from any number of concurrent readers.
// Registering the same type twice overwrites the previous entry and never
// corrupts others.
type Registry struct {
	mu sync.RWMutex

	tools        map[reflected.TypeKey]ToolVTable
	commands     map[reflected.TypeKey]CommandVTable
	toolNames    map[string]reflected.TypeKey
	commandNames map[string]reflected.TypeKey
	toolOrder    []reflected.TypeKey
	commandOrder []reflected.TypeKey
	toolEntry    map[reflected.TypeKey]ToolEntry
	commandEntry map[reflected.TypeKey]CommandEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:        make(map[reflected.TypeKey]ToolVTable),
		commands:     make(map[reflected.TypeKey]CommandVTable),
		toolNames:    make(map[string]reflected.TypeKey),
		commandNames: make(map[string]reflected.TypeKey),
		toolEntry:    make(map[reflected.TypeKey]ToolEntry),
		commandEntry: make(map[reflected.TypeKey]CommandEntry),
	}
}

func (r *Registry) putTool(entry ToolEntry, vt ToolVTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[entry.Key]; !exists {
		r.toolOrder = append(r.toolOrder, entry.Key)
	}
	r.tools[entry.Key] = vt
	r.toolEntry[entry.Key] = entry
	r.toolNames[entry.Name] = entry.Key
}

func (r *Registry) putCommand(entry CommandEntry, vt CommandVTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[entry.Key]; !exists {
		r.commandOrder = append(r.commandOrder, entry.Key)
	}
	r.commands[entry.Key] = vt
	r.commandEntry[entry.Key] = entry
	r.commandNames[entry.Name] = entry.Key
}

// LookupTool returns the vtable for a tool type key.
func (r *Registry) LookupTool(key reflected.TypeKey) (ToolVTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vt, ok := r.tools[key]
	return vt, ok
}

// LookupCommand returns the vtable for a command type key.
func (r *Registry) LookupCommand(key reflected.TypeKey) (CommandVTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vt, ok := r.commands[key]
	return vt, ok
}

// ResolveTool resolves a tool by type key or display name.
func (r *Registry) ResolveTool(ref string) (ToolEntry, ToolVTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := reflected.TypeKey(ref)
	if _, ok := r.tools[key]; !ok {
		key = r.toolNames[ref]
	}
	vt, ok := r.tools[key]
	if !ok {
		return ToolEntry{}, ToolVTable{}, false
	}
	return r.toolEntry[key], vt, true
}

// ResolveCommand resolves a command by type key or display name.
func (r *Registry) ResolveCommand(ref string) (CommandEntry, CommandVTable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := reflected.TypeKey(ref)
	if _, ok := r.commands[key]; !ok {
		key = r.commandNames[ref]
	}
	vt, ok := r.commands[key]
	if !ok {
		return CommandEntry{}, CommandVTable{}, false
	}
	return r.commandEntry[key], vt, true
}

// Tools returns all registered tool entries in registration order.
func (r *Registry) Tools() []ToolEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]ToolEntry, 0, len(r.toolOrder))
	for _, key := range r.toolOrder {
		entries = append(entries, r.toolEntry[key])
	}
	return entries
}

// Commands returns all registered command entries in registration order.
func (r *Registry) Commands() []CommandEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]CommandEntry, 0, len(r.commandOrder))
	for _, key := range r.commandOrder {
		entries = append(entries, r.commandEntry[key])
	}
	return entries
}

// ToolLen returns the number of registered tool types.
func (r *Registry) ToolLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// CommandLen returns the number of registered command types.
func (r *Registry) CommandLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}
