package devtools_test

import (
	"testing"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/reflected"
	"github.com/quartzlabs/devtools/tools"
)

// Exercises the full registration/dispatch lifecycle over the built-in
// Brightness tool: enable via a reconstructed command, disable, then toggle
// from a snapshot.
func TestBrightnessLifecycle(t *testing.T) {
	reg := devtools.NewRegistry()
	state := devtools.NewState()
	devtools.InsertTool(reg, state, tools.Brightness{Enabled: false, Level: 1})

	disp, err := devtools.NewDispatcher(devtools.DispatcherConfig{Registry: reg, State: state})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	enabled := func() bool {
		t.Helper()
		status, ok := disp.ToolStatus("Brightness")
		if !ok {
			t.Fatal("Brightness not live")
		}
		return status.Enabled
	}

	// Enable via a command reconstructed from an external payload.
	if _, err := disp.Dispatch("Enable[Brightness]", reflected.FromJSON("", []byte(`{}`))); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !enabled() {
		t.Fatal("enable: live state should be enabled")
	}

	if _, err := disp.Dispatch("Disable[Brightness]", reflected.FromJSON("", []byte(`{}`))); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if enabled() {
		t.Fatal("disable: live state should be disabled")
	}

	// Toggle from a snapshot with enabled == false flips live state to true.
	payload := []byte(`{"tool":{"enabled":false,"level":1}}`)
	if _, err := disp.Dispatch("Toggle[Brightness]", reflected.FromJSON("", payload)); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !enabled() {
		t.Fatal("toggle from disabled snapshot: live state should be enabled")
	}
}

func TestRegisterBuiltins(t *testing.T) {
	reg := devtools.NewRegistry()
	state := devtools.NewState()
	tools.RegisterBuiltins(reg, state)

	if got := reg.ToolLen(); got != 3 {
		t.Fatalf("ToolLen = %d, want 3", got)
	}
	// Three adapter commands per tool.
	if got := reg.CommandLen(); got != 9 {
		t.Fatalf("CommandLen = %d, want 9", got)
	}

	tests := []struct {
		name        string
		wantEnabled bool
	}{
		{"FlightCamera", true},
		{"fps_overlay", true},
		{"Brightness", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, vt, ok := reg.ResolveTool(tt.name)
			if !ok {
				t.Fatalf("tool %q not registered", tt.name)
			}
			live, ok := vt.AsTool(state)
			if !ok {
				t.Fatalf("tool %q has no live instance", tt.name)
			}
			if live.IsEnabled() != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", live.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}
