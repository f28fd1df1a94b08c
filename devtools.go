// Package devtools implements a reflective tool/command registry for host
// applications.
//
// A Tool is a long-lived, named feature switch owned by a State store. A
// Command is a one-shot mutation of that store. Both are registered by
// concrete type; registration builds an immutable per-type dispatch table
// (vtable) from generic code, so that a console, HTTP API, or scheduler can
// later look up, reconstruct, and invoke behavior for a type it only knows by
// its runtime identifier.
//
// Typical startup wiring:
//
//	reg := devtools.NewRegistry()
//	state := devtools.NewState()
//	devtools.RegisterTool[tools.FlightCamera](reg, state)
//	devtools.InsertTool(reg, state, tools.FPSOverlay{Enabled: true})
//
// and later, from a layer with no compile-time knowledge of the types:
//
//	disp, _ := devtools.NewDispatcher(devtools.DispatcherConfig{Registry: reg, State: state})
//	disp.Dispatch("Enable[FlightCamera]", payload)
package devtools
