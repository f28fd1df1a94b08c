package devtools

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlabs/devtools/reflected"
)

const (
	// DispatchErrorCodeUnknownType is returned when a type reference does not
	// resolve to a registered vtable.
	DispatchErrorCodeUnknownType = "UNKNOWN_TYPE"
	// DispatchErrorCodeDecodeFailure is returned when an opaque payload does
	// not match the target type's shape.
	DispatchErrorCodeDecodeFailure = "DECODE_FAILURE"
)

// DispatchError is a structured dispatch failure that can flow across the
// HTTP API, CLI, and scheduler without losing its machine-readable code.
// Inside the registry core the same conditions are absent-value results;
// the dispatcher is where the host's escalation policy begins.
type DispatchError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DispatchError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return "dispatch failed"
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// AsDispatchError extracts a *DispatchError from an error chain.
func AsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// DispatcherConfig carries the collaborators a Dispatcher needs.
type DispatcherConfig struct {
	Registry *Registry
	State    *State

	// Emitter receives one event per dispatch outcome. Optional.
	Emitter EventEmitter

	// Now overrides the clock, for tests. Optional.
	Now func() time.Time
}

// Dispatcher is the host-facing layer over the registry: it resolves a type
// reference, reconstructs a command from an opaque payload, and applies it.
// Applies are serialized by an internal mutex, providing the exclusivity the
// state store requires from its host.
type Dispatcher struct {
	registry *Registry
	state    *State
	emit     EventEmitter
	now      func() time.Time

	mu sync.Mutex
}

// NewDispatcher validates the config and creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("devtools: dispatcher registry is nil")
	}
	if cfg.State == nil {
		return nil, errors.New("devtools: dispatcher state is nil")
	}
	emit := cfg.Emitter
	if emit == nil {
		emit = func(Event) {}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		registry: cfg.Registry,
		state:    cfg.State,
		emit:     emit,
		now:      now,
	}, nil
}

// Dispatch resolves ref (command type key or display name) to a vtable,
// reconstructs the command from the payload, and applies it to the state
// store. The returned event records the outcome; failures carry a
// *DispatchError.
func (d *Dispatcher) Dispatch(ref string, payload reflected.Value) (Event, error) {
	entry, vt, ok := d.registry.ResolveCommand(ref)
	if !ok {
		return d.fail(CommandEntry{Name: ref}, &DispatchError{
			Code:    DispatchErrorCodeUnknownType,
			Message: fmt.Sprintf("unknown command %q", ref),
		})
	}

	cmd, ok := vt.FromReflected(payload)
	if !ok {
		return d.fail(entry, &DispatchError{
			Code:    DispatchErrorCodeDecodeFailure,
			Message: fmt.Sprintf("payload does not match command %q", entry.Name),
		})
	}

	start := d.now()
	d.mu.Lock()
	cmd.Apply(d.state)
	d.mu.Unlock()
	end := d.now()

	event := Event{
		ID:      uuid.New().String(),
		Kind:    EventCommandApplied,
		Command: entry.Name,
		Key:     entry.Key,
		Time:    end,
		Elapsed: end.Sub(start),
	}
	d.emit(event)
	return event, nil
}

// SetToolEnabled resolves ref (tool type key or display name) and dispatches
// the tool's Enable or Disable command with an empty snapshot payload.
func (d *Dispatcher) SetToolEnabled(ref string, enabled bool) (Event, error) {
	entry, _, ok := d.registry.ResolveTool(ref)
	if !ok {
		return d.fail(CommandEntry{Name: ref}, &DispatchError{
			Code:    DispatchErrorCodeUnknownType,
			Message: fmt.Sprintf("unknown tool %q", ref),
		})
	}
	verb := "Enable"
	if !enabled {
		verb = "Disable"
	}
	return d.Dispatch(verb+"["+entry.Name+"]", reflected.FromJSON("", []byte(`{}`)))
}

// ToggleTool resolves ref and dispatches the tool's Toggle command with a
// snapshot freshly described from the live value, so the toggle flips the
// live flag.
func (d *Dispatcher) ToggleTool(ref string) (Event, error) {
	entry, vt, ok := d.registry.ResolveTool(ref)
	if !ok {
		return d.fail(CommandEntry{Name: ref}, &DispatchError{
			Code:    DispatchErrorCodeUnknownType,
			Message: fmt.Sprintf("unknown tool %q", ref),
		})
	}

	d.mu.Lock()
	snapshot, ok := vt.Describe(d.state)
	d.mu.Unlock()
	if !ok {
		return d.fail(CommandEntry{Name: ref}, &DispatchError{
			Code:    DispatchErrorCodeUnknownType,
			Message: fmt.Sprintf("tool %q has no live instance", entry.Name),
		})
	}

	payload := []byte(`{"tool":` + string(snapshot.Raw()) + `}`)
	return d.Dispatch("Toggle["+entry.Name+"]", reflected.FromJSON("", payload))
}

// ToolStatus is a read-only view of one live tool, used by listing surfaces
// and snapshot persistence.
type ToolStatus struct {
	Key     reflected.TypeKey
	Name    string
	Enabled bool
	Value   reflected.Value
}

// Tools returns the status of every registered tool that has a live
// instance, in registration order.
func (d *Dispatcher) Tools() []ToolStatus {
	entries := d.registry.Tools()
	statuses := make([]ToolStatus, 0, len(entries))

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, entry := range entries {
		vt, ok := d.registry.LookupTool(entry.Key)
		if !ok {
			continue
		}
		live, ok := vt.AsTool(d.state)
		if !ok {
			continue
		}
		value, _ := vt.Describe(d.state)
		statuses = append(statuses, ToolStatus{
			Key:     entry.Key,
			Name:    entry.Name,
			Enabled: live.IsEnabled(),
			Value:   value,
		})
	}
	return statuses
}

// ToolStatus returns the status of a single tool by type key or name.
func (d *Dispatcher) ToolStatus(ref string) (ToolStatus, bool) {
	entry, vt, ok := d.registry.ResolveTool(ref)
	if !ok {
		return ToolStatus{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	live, ok := vt.AsTool(d.state)
	if !ok {
		return ToolStatus{}, false
	}
	value, _ := vt.Describe(d.state)
	return ToolStatus{
		Key:     entry.Key,
		Name:    entry.Name,
		Enabled: live.IsEnabled(),
		Value:   value,
	}, true
}

func (d *Dispatcher) fail(entry CommandEntry, derr *DispatchError) (Event, error) {
	event := Event{
		ID:      uuid.New().String(),
		Kind:    EventCommandFailed,
		Command: entry.Name,
		Key:     entry.Key,
		Time:    d.now(),
		Err:     derr.Error(),
	}
	d.emit(event)
	return event, derr
}
