package daemon

import (
	"testing"
	"time"

	"github.com/quartzlabs/devtools"
	"github.com/quartzlabs/devtools/tools"
)

func newTestScheduler(t *testing.T, decls []ScheduleDeclaration, now func() time.Time) (*Scheduler, *devtools.Dispatcher) {
	t.Helper()

	reg := devtools.NewRegistry()
	state := devtools.NewState()
	tools.RegisterBuiltins(reg, state)

	dispatcher, err := devtools.NewDispatcher(devtools.DispatcherConfig{
		Registry: reg,
		State:    state,
	})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	scheduler, err := NewScheduler(SchedulerConfig{
		Dispatcher: dispatcher,
		Schedules:  decls,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	return scheduler, dispatcher
}

func TestScheduler_FiresToolAction(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	now := func() time.Time { return clock }

	scheduler, dispatcher := newTestScheduler(t, []ScheduleDeclaration{
		{Cron: "* * * * *", Tool: "Brightness", Action: "enable"},
	}, now)

	// Not yet due.
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("Brightness"); status.Enabled {
		t.Fatal("schedule fired before its cron slot")
	}

	clock = time.Date(2026, 1, 2, 3, 5, 0, 0, time.UTC)
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("Brightness"); !status.Enabled {
		t.Fatal("schedule did not fire at its cron slot")
	}

	// Same tick does not fire twice.
	if _, err := dispatcher.SetToolEnabled("Brightness", false); err != nil {
		t.Fatalf("SetToolEnabled: %v", err)
	}
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("Brightness"); status.Enabled {
		t.Fatal("schedule fired twice in the same slot")
	}

	clock = time.Date(2026, 1, 2, 3, 6, 0, 0, time.UTC)
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("Brightness"); !status.Enabled {
		t.Fatal("schedule did not fire at the next slot")
	}
}

func TestScheduler_FiresRawCommand(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	scheduler, dispatcher := newTestScheduler(t, []ScheduleDeclaration{
		{
			Cron:    "* * * * *",
			Command: "Disable[fps_overlay]",
			Payload: `{}`,
		},
	}, now)

	clock = clock.Add(time.Minute)
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("fps_overlay"); status.Enabled {
		t.Fatal("raw command schedule did not apply")
	}
}

func TestScheduler_ToggleUsesLiveSnapshot(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	scheduler, dispatcher := newTestScheduler(t, []ScheduleDeclaration{
		{Cron: "* * * * *", Tool: "FlightCamera", Action: "toggle"},
	}, now)

	// Two consecutive fires flip the flag both ways.
	clock = clock.Add(time.Minute)
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("FlightCamera"); status.Enabled {
		t.Fatal("first toggle did not disable")
	}
	clock = clock.Add(time.Minute)
	scheduler.RunOnce()
	if status, _ := dispatcher.ToolStatus("FlightCamera"); !status.Enabled {
		t.Fatal("second toggle did not re-enable")
	}
}

func TestScheduler_RejectsBadDeclarations(t *testing.T) {
	reg := devtools.NewRegistry()
	state := devtools.NewState()
	dispatcher, err := devtools.NewDispatcher(devtools.DispatcherConfig{Registry: reg, State: state})
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}

	cases := map[string]ScheduleDeclaration{
		"bad cron":    {Cron: "bogus", Tool: "Brightness", Action: "enable"},
		"bad payload": {Cron: "* * * * *", Command: "Enable[Brightness]", Payload: "{not json"},
		"no target":   {Cron: "* * * * *"},
	}
	for name, decl := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewScheduler(SchedulerConfig{
				Dispatcher: dispatcher,
				Schedules:  []ScheduleDeclaration{decl},
			})
			if err == nil {
				t.Errorf("declaration accepted: %+v", decl)
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	scheduler, _ := newTestScheduler(t, nil, nil)
	scheduler.Start()
	scheduler.Start() // second start is a no-op
	scheduler.Stop()
	scheduler.Stop() // second stop is a no-op
}

func TestNextCronRunUTC(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	next, err := nextCronRunUTC("0 22 * * *", now)
	if err != nil {
		t.Fatalf("nextCronRunUTC: %v", err)
	}
	want := time.Date(2026, 1, 2, 22, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}

	if _, err := nextCronRunUTC("", now); err == nil {
		t.Error("empty expression accepted")
	}
}
