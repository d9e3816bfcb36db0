// Package jsonutil marshals statistics results whose numeric fields may
// legitimately be NaN. encoding/json rejects NaN and infinities, so
// degenerate-input results are rewritten with null in those positions.
package jsonutil

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

// Marshal renders v as JSON with NaN and infinite floats as null.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(sanitize(reflect.ValueOf(v)))
}

// MarshalIndent is Marshal with indentation, for CLI output.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(sanitize(reflect.ValueOf(v)), prefix, indent)
}

func sanitize(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}

	// Types with their own marshaler (time.Time, result types) render
	// themselves; sanitizing their internals would mangle them.
	if v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface && v.CanInterface() {
		if m, ok := v.Interface().(json.Marshaler); ok {
			if b, err := m.MarshalJSON(); err == nil {
				return json.RawMessage(b)
			}
		}
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem())

	case reflect.Struct:
		out := make(map[string]interface{}, v.NumField())
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitempty := jsonName(field)
			if name == "-" {
				continue
			}
			fv := v.Field(i)
			if field.Anonymous && field.Tag.Get("json") == "" {
				// Embedded struct fields flatten like encoding/json does.
				if inner, ok := sanitize(fv).(map[string]interface{}); ok {
					for k, val := range inner {
						out[k] = val
					}
					continue
				}
			}
			if omitempty && fv.IsZero() {
				continue
			}
			out[name] = sanitize(fv)
		}
		return out

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = sanitize(v.Index(i))
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]interface{}, v.Len())
		for _, key := range v.MapKeys() {
			out[keyString(key)] = sanitize(v.MapIndex(key))
		}
		return out
	}

	return v.Interface()
}

func jsonName(field reflect.StructField) (name string, omitempty bool) {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty
}

func keyString(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return key.String()
	}
	if s, ok := key.Interface().(interface{ String() string }); ok {
		return s.String()
	}
	b, _ := json.Marshal(key.Interface())
	return strings.Trim(string(b), `"`)
}
