// Package tools provides the built-in developer tools that ship with
// devtools. They are plain state structs; rendering and per-frame update
// logic are host concerns.
package tools

import "github.com/quartzlabs/devtools"

// FlightCamera is a free-flying debug camera switch.
type FlightCamera struct {
	Enabled       bool    `json:"enabled"`
	MovementSpeed float64 `json:"movement_speed"`
	TurnSpeed     float64 `json:"turn_speed"`
}

// SetDefaults makes the camera enabled with moderate speeds.
func (c *FlightCamera) SetDefaults() {
	c.Enabled = true
	c.MovementSpeed = 3
	c.TurnSpeed = 10
}

// SetEnabled turns the camera on or off.
func (c *FlightCamera) SetEnabled(enabled bool) {
	c.Enabled = enabled
}

// IsEnabled reports whether the camera is enabled.
func (c *FlightCamera) IsEnabled() bool {
	return c.Enabled
}

// FPSOverlay is a frame-rate text overlay switch with display settings.
type FPSOverlay struct {
	Enabled   bool    `json:"enabled"`
	FontSize  float64 `json:"font_size"`
	FontColor string  `json:"font_color"`
}

// Name overrides the type-derived display name.
func (o *FPSOverlay) Name() string {
	return "fps_overlay"
}

// SetDefaults makes the overlay enabled with a readable white font.
func (o *FPSOverlay) SetDefaults() {
	o.Enabled = true
	o.FontSize = 32
	o.FontColor = "#ffffff"
}

// SetEnabled turns the overlay on or off.
func (o *FPSOverlay) SetEnabled(enabled bool) {
	o.Enabled = enabled
}

// IsEnabled reports whether the overlay is enabled.
func (o *FPSOverlay) IsEnabled() bool {
	return o.Enabled
}

// Brightness is a screen-brightness debug adjustment switch. It defaults to
// disabled.
type Brightness struct {
	Enabled bool    `json:"enabled"`
	Level   float64 `json:"level"`
}

// SetDefaults leaves the tool disabled at full level.
func (b *Brightness) SetDefaults() {
	b.Level = 1
}

// SetEnabled turns the adjustment on or off.
func (b *Brightness) SetEnabled(enabled bool) {
	b.Enabled = enabled
}

// IsEnabled reports whether the adjustment is enabled.
func (b *Brightness) IsEnabled() bool {
	return b.Enabled
}

// RegisterBuiltins registers every built-in tool type with default state.
func RegisterBuiltins(r *devtools.Registry, s *devtools.State) {
	devtools.RegisterTool[FlightCamera](r, s)
	devtools.RegisterTool[FPSOverlay](r, s)
	devtools.RegisterTool[Brightness](r, s)
}
