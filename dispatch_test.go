package devtools

import (
	"errors"
	"testing"

	"github.com/quartzlabs/devtools/reflected"
)

func newTestDispatcher(t *testing.T, enabled bool) (*Dispatcher, *Registry, *State, *[]Event) {
	t.Helper()
	r, s := setupProbe(t, enabled)
	var events []Event
	d, err := NewDispatcher(DispatcherConfig{
		Registry: r,
		State:    s,
		Emitter:  func(e Event) { events = append(events, e) },
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return d, r, s, &events
}

func TestNewDispatcher_RequiresCollaborators(t *testing.T) {
	if _, err := NewDispatcher(DispatcherConfig{State: NewState()}); err == nil {
		t.Error("nil registry accepted")
	}
	if _, err := NewDispatcher(DispatcherConfig{Registry: NewRegistry()}); err == nil {
		t.Error("nil state accepted")
	}
}

func TestDispatch_ByNameAppliesCommand(t *testing.T) {
	d, r, s, events := newTestDispatcher(t, false)

	event, err := d.Dispatch("Enable[probe]", reflected.FromJSON("", []byte(`{}`)))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !probeEnabled(t, r, s) {
		t.Error("dispatch did not enable the tool")
	}
	if event.Kind != EventCommandApplied {
		t.Errorf("event kind = %q, want %q", event.Kind, EventCommandApplied)
	}
	if event.ID == "" {
		t.Error("event has no ID")
	}
	if len(*events) != 1 || (*events)[0].Command != "Enable[probe]" {
		t.Errorf("emitted events = %+v", *events)
	}
}

func TestDispatch_ByTypeKey(t *testing.T) {
	d, r, s, _ := newTestDispatcher(t, false)

	key := reflected.KeyFor[Enable[probe, *probe]]()
	if _, err := d.Dispatch(string(key), reflected.FromJSON("", []byte(`{}`))); err != nil {
		t.Fatalf("Dispatch by key: %v", err)
	}
	if !probeEnabled(t, r, s) {
		t.Error("dispatch by type key did not enable the tool")
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	d, _, _, events := newTestDispatcher(t, false)

	_, err := d.Dispatch("Vanish[probe]", reflected.FromJSON("", []byte(`{}`)))
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	de, ok := AsDispatchError(err)
	if !ok {
		t.Fatalf("error %T is not a DispatchError", err)
	}
	if de.Code != DispatchErrorCodeUnknownType {
		t.Errorf("code = %q, want %q", de.Code, DispatchErrorCodeUnknownType)
	}
	if len(*events) != 1 || (*events)[0].Kind != EventCommandFailed {
		t.Errorf("expected one failure event, got %+v", *events)
	}
}

func TestDispatch_MalformedPayloadDegradesGracefully(t *testing.T) {
	d, r, s, _ := newTestDispatcher(t, false)

	_, err := d.Dispatch("Enable[probe]", reflected.FromJSON("", []byte(`{"tool":{"bogus":1}}`)))
	de, ok := AsDispatchError(err)
	if !ok {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if de.Code != DispatchErrorCodeDecodeFailure {
		t.Errorf("code = %q, want %q", de.Code, DispatchErrorCodeDecodeFailure)
	}
	if probeEnabled(t, r, s) {
		t.Error("state mutated by failed dispatch")
	}
}

func TestSetToolEnabled(t *testing.T) {
	d, r, s, _ := newTestDispatcher(t, false)

	if _, err := d.SetToolEnabled("probe", true); err != nil {
		t.Fatalf("SetToolEnabled(true): %v", err)
	}
	if !probeEnabled(t, r, s) {
		t.Error("tool not enabled")
	}

	if _, err := d.SetToolEnabled("probe", false); err != nil {
		t.Fatalf("SetToolEnabled(false): %v", err)
	}
	if probeEnabled(t, r, s) {
		t.Error("tool not disabled")
	}

	if _, err := d.SetToolEnabled("ghost", true); err == nil {
		t.Error("unknown tool accepted")
	}
}

func TestToggleTool_FlipsLiveValue(t *testing.T) {
	d, r, s, _ := newTestDispatcher(t, false)

	if _, err := d.ToggleTool("probe"); err != nil {
		t.Fatalf("ToggleTool: %v", err)
	}
	if !probeEnabled(t, r, s) {
		t.Error("first toggle should enable")
	}

	if _, err := d.ToggleTool("probe"); err != nil {
		t.Fatalf("ToggleTool: %v", err)
	}
	if probeEnabled(t, r, s) {
		t.Error("second toggle should disable")
	}
}

func TestDispatcher_Tools(t *testing.T) {
	d, r, s, _ := newTestDispatcher(t, true)
	RegisterTool[gizmo](r, s)

	statuses := d.Tools()
	if len(statuses) != 2 {
		t.Fatalf("Tools() returned %d statuses, want 2", len(statuses))
	}
	if statuses[0].Name != "probe" || !statuses[0].Enabled {
		t.Errorf("statuses[0] = %+v", statuses[0])
	}
	if statuses[1].Name != "gizmo_overlay" || !statuses[1].Enabled {
		t.Errorf("statuses[1] = %+v", statuses[1])
	}

	status, ok := d.ToolStatus("gizmo_overlay")
	if !ok {
		t.Fatal("ToolStatus missed registered tool")
	}
	if status.Value.Fields() == nil {
		t.Error("ToolStatus carries no described value")
	}

	if _, ok := d.ToolStatus("ghost"); ok {
		t.Error("ToolStatus resolved unknown tool")
	}
}

func TestDispatchError_Error(t *testing.T) {
	err := &DispatchError{Code: "UNKNOWN_TYPE", Message: "nope"}
	if err.Error() != "UNKNOWN_TYPE: nope" {
		t.Errorf("Error() = %q", err.Error())
	}
	var generic error = err
	var de *DispatchError
	if !errors.As(generic, &de) {
		t.Error("errors.As failed for DispatchError")
	}
}
