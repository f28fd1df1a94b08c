package devtools

import (
	"testing"

	"github.com/quartzlabs/devtools/reflected"
)

func setupProbe(t *testing.T, enabled bool) (*Registry, *State) {
	t.Helper()
	r := NewRegistry()
	s := NewState()
	InsertTool(r, s, probe{Enabled: enabled})
	return r, s
}

func probeEnabled(t *testing.T, r *Registry, s *State) bool {
	t.Helper()
	vt, ok := r.LookupTool(reflected.KeyFor[probe]())
	if !ok {
		t.Fatal("probe not registered")
	}
	live, ok := vt.AsTool(s)
	if !ok {
		t.Fatal("no live probe")
	}
	return live.IsEnabled()
}

func TestEnable_SetsLiveFlagRegardlessOfPrior(t *testing.T) {
	for _, prior := range []bool{false, true} {
		r, s := setupProbe(t, prior)
		Enable[probe, *probe]{}.Apply(s)
		if !probeEnabled(t, r, s) {
			t.Errorf("prior=%v: Enable did not set live flag to true", prior)
		}
	}
}

func TestDisable_ClearsLiveFlagRegardlessOfPrior(t *testing.T) {
	for _, prior := range []bool{false, true} {
		r, s := setupProbe(t, prior)
		Disable[probe, *probe]{}.Apply(s)
		if probeEnabled(t, r, s) {
			t.Errorf("prior=%v: Disable did not set live flag to false", prior)
		}
	}
}

func TestToggle_FlipsRelativeToSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot bool
		live     bool
		want     bool
	}{
		{"fresh snapshot off", false, false, true},
		{"fresh snapshot on", true, true, false},
		{"stale snapshot off, live on", false, true, true},
		{"stale snapshot on, live off", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s := setupProbe(t, tt.live)
			Toggle[probe, *probe]{Tool: probe{Enabled: tt.snapshot}}.Apply(s)
			if got := probeEnabled(t, r, s); got != tt.want {
				t.Errorf("live flag = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdapters_MissingLiveInstanceIsNoOp(t *testing.T) {
	s := NewState()
	// Must not panic.
	Enable[probe, *probe]{}.Apply(s)
	Disable[probe, *probe]{}.Apply(s)
	Toggle[probe, *probe]{}.Apply(s)
}

func TestAdapterNames(t *testing.T) {
	if got := (Enable[probe, *probe]{}).Name(); got != "Enable[probe]" {
		t.Errorf("Enable name = %q", got)
	}
	if got := (Disable[gizmo, *gizmo]{}).Name(); got != "Disable[gizmo_overlay]" {
		t.Errorf("Disable name = %q", got)
	}
	if got := (Toggle[probe, *probe]{}).Name(); got != "Toggle[probe]" {
		t.Errorf("Toggle name = %q", got)
	}
}

func TestToolName_FallsBackToTypeName(t *testing.T) {
	if got := ToolName(&probe{}); got != "probe" {
		t.Errorf("ToolName = %q, want %q", got, "probe")
	}
	if got := ToolName(&gizmo{}); got != "gizmo_overlay" {
		t.Errorf("ToolName = %q, want %q", got, "gizmo_overlay")
	}
}
