// Package reflected provides a type-erased, introspectable representation of
// Go values, plus stable runtime type identifiers.
//
// A Value is produced by Describe and can be turned back into a concrete
// value of a statically known type with As. Reconstruction is strict: a
// payload whose shape does not match the target type yields an absent
// result rather than an error or a partially filled value.
package reflected

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// TypeKey uniquely identifies a concrete Go type for the lifetime of the
// process. Two distinct types never share a key, and the same type always
// maps to the same key.
type TypeKey string

// String returns the string representation of the TypeKey.
func (k TypeKey) String() string {
	return string(k)
}

// KeyFor returns the TypeKey for the static type T.
func KeyFor[T any]() TypeKey {
	return keyForType(reflect.TypeOf((*T)(nil)).Elem())
}

// KeyOf returns the TypeKey for the dynamic type of v. Pointers are
// dereferenced, so a *T and a T map to the same key.
func KeyOf(v any) TypeKey {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return keyForType(t)
}

func keyForType(t reflect.Type) TypeKey {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return TypeKey(t.String())
	}
	return TypeKey(t.PkgPath() + "." + t.Name())
}

// ShortNameFor returns a compact, human-readable name for the static type T,
// with package paths stripped from generic type arguments.
func ShortNameFor[T any]() string {
	return shortNameForType(reflect.TypeOf((*T)(nil)).Elem())
}

// ShortNameOf returns the compact name of the dynamic type of v.
func ShortNameOf(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return shortNameForType(t)
}

func shortNameForType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return shortenTypeName(t.String())
}

// shortenTypeName strips package paths and qualifiers from a reflect type
// string, including inside generic instantiation brackets:
//
//	"tools.Brightness"                          -> "Brightness"
//	"devtools.Enable[pkg/tools.Brightness,...]" -> "Enable[Brightness,...]"
func shortenTypeName(full string) string {
	var out strings.Builder
	seg := strings.Builder{}
	flush := func() {
		s := seg.String()
		seg.Reset()
		if s == "" {
			return
		}
		if i := strings.LastIndexByte(s, '/'); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndexByte(s, '.'); i >= 0 {
			s = s[i+1:]
		}
		out.WriteString(s)
	}
	for _, r := range full {
		switch r {
		case '[', ']', ',', ' ', '*':
			flush()
			if r != ' ' && r != '*' {
				out.WriteRune(r)
			}
		default:
			seg.WriteRune(r)
		}
	}
	flush()
	return out.String()
}

// Value is an opaque, introspectable snapshot of a concrete value. The zero
// Value describes nothing and never reconstructs.
type Value struct {
	key TypeKey
	raw json.RawMessage
}

// Describe captures v as an opaque Value carrying its type key and a
// field-level snapshot. Values that cannot be snapshotted (channels,
// functions, cyclic data) yield the zero Value.
func Describe(v any) Value {
	raw, err := json.Marshal(v)
	if err != nil {
		return Value{}
	}
	return Value{key: KeyOf(v), raw: raw}
}

// FromJSON wraps an externally supplied payload as a Value. The key may be
// empty when the sender does not know the concrete type; reconstruction then
// relies on strict shape matching alone.
func FromJSON(key TypeKey, raw []byte) Value {
	return Value{key: key, raw: append(json.RawMessage(nil), raw...)}
}

// Key returns the type key the value was described from, or "" for
// externally supplied payloads.
func (v Value) Key() TypeKey {
	return v.key
}

// Raw returns the underlying snapshot payload.
func (v Value) Raw() []byte {
	return v.raw
}

// IsZero reports whether the value describes nothing.
func (v Value) IsZero() bool {
	return v.key == "" && len(v.raw) == 0
}

// Fields returns the snapshot as a field map for introspection. Returns nil
// when the snapshot is not an object.
func (v Value) Fields() map[string]any {
	if len(v.raw) == 0 {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(v.raw, &fields); err != nil {
		return nil
	}
	return fields
}

// As reconstructs a concrete T from an opaque value. It reports false when
// the value carries a different type's key, or when the payload shape does
// not match T (unknown fields, wrong kinds). It never panics.
func As[T any](v Value) (T, bool) {
	var out T
	if len(v.raw) == 0 {
		return out, false
	}
	if v.key != "" && v.key != KeyFor[T]() {
		return out, false
	}
	dec := json.NewDecoder(bytes.NewReader(v.raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
