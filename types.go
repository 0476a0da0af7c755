package cli

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Setter is implemented by field types that parse their own values.
type Setter interface {
	Set(s string) error
}

// SetterFunc is given a pointer to a field (or sequence element) and may
// return a custom Setter for it. Returning nil falls back to the default
// coercion rules.
type SetterFunc func(i interface{}) Setter

// setterFor resolves the coercion strategy for a settable value. Custom
// setters win, then the value's own interfaces (Setter, TextUnmarshaler,
// BinaryUnmarshaler), then per-kind strconv parsing, which also covers
// named types like `type Port int`.
func setterFor(val reflect.Value, custom SetterFunc) (Setter, error) {
	// Interfaces might be implemented using value or pointer receivers, so
	// try both if we can take an address.
	var interfaceables []interface{}
	if val.CanInterface() {
		interfaceables = append(interfaceables, val.Interface())
	}
	if val.CanAddr() {
		interfaceables = append(interfaceables, val.Addr().Interface())
	}
	for _, i := range interfaceables {
		if custom != nil {
			if set := custom(i); set != nil {
				return set, nil
			}
		}
		if set := tryGetSetter(i); set != nil {
			return set, nil
		}
	}
	if set := kindSetter(val); set != nil {
		return set, nil
	}
	return nil, fmt.Errorf("no setter for type %s", val.Type())
}

func tryGetSetter(i interface{}) Setter {
	switch v := i.(type) {
	case Setter:
		return v
	case encoding.TextUnmarshaler:
		return textSetter{v}
	case encoding.BinaryUnmarshaler:
		return binarySetter{v}
	case *time.Duration:
		return durationSetter{v}
	case *string:
		return stringSetter{v}
	default:
		return nil
	}
}

func kindSetter(val reflect.Value) Setter {
	if !val.CanSet() {
		return nil
	}
	switch val.Kind() {
	case reflect.String,
		reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return primitiveSetter{val}
	default:
		return nil
	}
}

// string

type stringSetter struct {
	v *string
}

func (ss stringSetter) Set(s string) error {
	*ss.v = s
	return nil
}

// TextUnmarshaler

type textSetter struct {
	encoding.TextUnmarshaler
}

func (ts textSetter) Set(s string) error {
	return ts.UnmarshalText([]byte(s))
}

// BinaryUnmarshaler

type binarySetter struct {
	encoding.BinaryUnmarshaler
}

func (bs binarySetter) Set(s string) error {
	return bs.UnmarshalBinary([]byte(s))
}

// Primitives (strconv)

type primitiveSetter struct {
	val reflect.Value
}

func (ps primitiveSetter) Set(s string) error {
	v := ps.val
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean value %q", s)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value %q", s)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 0, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer value %q", s)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", s)
		}
		v.SetFloat(f)
	default:
		return fmt.Errorf("unsupported kind %s", v.Kind())
	}
	return nil
}

// time.Duration

type durationSetter struct {
	duration *time.Duration
}

func (ds durationSetter) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*ds.duration = v
	return nil
}

// stringers

type stringer interface {
	String() string
}

func stringerFor(val reflect.Value) stringer {
	if !val.IsValid() || !val.CanInterface() {
		return nil
	}
	if s, ok := val.Interface().(stringer); ok {
		return s
	}
	if val.CanAddr() {
		if s, ok := val.Addr().Interface().(stringer); ok {
			return s
		}
	}
	return nil
}
