package reflected

import (
	"testing"
)

type sample struct {
	Enabled bool    `json:"enabled"`
	Speed   float64 `json:"speed"`
}

type other struct {
	Enabled bool `json:"enabled"`
}

func TestKeyFor_StableAndUnique(t *testing.T) {
	k1 := KeyFor[sample]()
	k2 := KeyFor[sample]()
	if k1 != k2 {
		t.Errorf("KeyFor not stable: %q vs %q", k1, k2)
	}
	if k1 == KeyFor[other]() {
		t.Errorf("distinct types share key %q", k1)
	}
}

func TestKeyOf_DereferencesPointers(t *testing.T) {
	v := sample{}
	if KeyOf(v) != KeyOf(&v) {
		t.Errorf("KeyOf(v) = %q, KeyOf(&v) = %q; want equal", KeyOf(v), KeyOf(&v))
	}
	if KeyOf(v) != KeyFor[sample]() {
		t.Errorf("KeyOf = %q, KeyFor = %q; want equal", KeyOf(v), KeyFor[sample]())
	}
}

func TestKeyOf_Nil(t *testing.T) {
	if got := KeyOf(nil); got != "" {
		t.Errorf("KeyOf(nil) = %q, want empty", got)
	}
}

func TestShortNameOf(t *testing.T) {
	if got := ShortNameOf(sample{}); got != "sample" {
		t.Errorf("ShortNameOf = %q, want %q", got, "sample")
	}
	if got := ShortNameOf(&sample{}); got != "sample" {
		t.Errorf("ShortNameOf(ptr) = %q, want %q", got, "sample")
	}
}

func TestShortenTypeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tools.Brightness", "Brightness"},
		{"github.com/quartzlabs/devtools/tools.Brightness", "Brightness"},
		{"devtools.Enable[github.com/quartzlabs/devtools/tools.Brightness,*github.com/quartzlabs/devtools/tools.Brightness]", "Enable[Brightness,Brightness]"},
		{"int", "int"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := shortenTypeName(tt.in); got != tt.want {
				t.Errorf("shortenTypeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDescribeAs_RoundTrip(t *testing.T) {
	in := sample{Enabled: true, Speed: 3.5}
	v := Describe(in)

	if v.IsZero() {
		t.Fatal("Describe returned zero value")
	}
	if v.Key() != KeyFor[sample]() {
		t.Errorf("Key = %q, want %q", v.Key(), KeyFor[sample]())
	}

	out, ok := As[sample](v)
	if !ok {
		t.Fatal("As failed on described value")
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDescribe_Pointer(t *testing.T) {
	in := &sample{Enabled: true}
	v := Describe(in)
	out, ok := As[sample](v)
	if !ok {
		t.Fatal("As failed on described pointer")
	}
	if !out.Enabled {
		t.Error("Enabled not preserved through pointer describe")
	}
}

func TestAs_KeyMismatch(t *testing.T) {
	v := Describe(sample{Enabled: true})
	if _, ok := As[other](v); ok {
		t.Error("As succeeded across type keys")
	}
}

func TestAs_ShapeMismatch(t *testing.T) {
	v := FromJSON("", []byte(`{"enabled":true,"speed":1,"bogus":"x"}`))
	if _, ok := As[sample](v); ok {
		t.Error("As accepted payload with unknown field")
	}

	v = FromJSON("", []byte(`{"enabled":"yes"}`))
	if _, ok := As[sample](v); ok {
		t.Error("As accepted payload with wrong field kind")
	}
}

func TestAs_ExternalPayloadWithoutKey(t *testing.T) {
	v := FromJSON("", []byte(`{"enabled":true,"speed":2}`))
	out, ok := As[sample](v)
	if !ok {
		t.Fatal("As rejected well-formed keyless payload")
	}
	if !out.Enabled || out.Speed != 2 {
		t.Errorf("got %+v", out)
	}
}

func TestAs_ZeroValue(t *testing.T) {
	if _, ok := As[sample](Value{}); ok {
		t.Error("As succeeded on zero Value")
	}
}

func TestFields(t *testing.T) {
	v := Describe(sample{Enabled: true, Speed: 1})
	fields := v.Fields()
	if fields == nil {
		t.Fatal("Fields returned nil for object snapshot")
	}
	if enabled, _ := fields["enabled"].(bool); !enabled {
		t.Errorf("fields[enabled] = %v, want true", fields["enabled"])
	}
}
