package devtools

// Test fixtures shared across the package tests.

// probe is a minimal tool whose zero value is disabled.
type probe struct {
	Enabled bool `json:"enabled"`
	Level   int  `json:"level"`
}

func (p *probe) SetEnabled(enabled bool) { p.Enabled = enabled }
func (p *probe) IsEnabled() bool         { return p.Enabled }

// gizmo carries a custom display name and a non-zero default state.
type gizmo struct {
	Enabled bool    `json:"enabled"`
	Scale   float64 `json:"scale"`
}

func (g *gizmo) Name() string { return "gizmo_overlay" }

func (g *gizmo) SetDefaults() {
	g.Enabled = true
	g.Scale = 1.5
}

func (g *gizmo) SetEnabled(enabled bool) { g.Enabled = enabled }
func (g *gizmo) IsEnabled() bool         { return g.Enabled }
