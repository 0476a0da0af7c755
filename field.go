package cli

import (
	"encoding"
	"reflect"

	"github.com/huandu/xstrings"
)

// fieldInfo describes one introspected config struct field.
type fieldInfo struct {
	// Name is the Go field name; it is the key understood by the Field,
	// Include, and Exclude options.
	Name string
	// CLIName is the user-facing argument name, either taken from metadata
	// or derived by kebab-casing the field name.
	CLIName string
	// Index is the reflect field index path from the struct root, so
	// fields of embedded structs resolve correctly.
	Index []int

	Meta Meta

	// Type is the effective type with any optional pointer removed.
	Type     reflect.Type
	Optional bool
	IsBool   bool
	IsSlice  bool
	IsMap    bool
	Elem     reflect.Type // sequence element type, when IsSlice
}

// raw resolves the field inside target as declared, allocating through
// intermediate embedded pointers so the result is addressable.
func (f *fieldInfo) raw(target reflect.Value) reflect.Value {
	v := target
	for _, i := range f.Index {
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(i)
	}
	return v
}

// alloc resolves the field inside target with the optional pointer
// unwrapped, allocating it first if necessary.
func (f *fieldInfo) alloc(target reflect.Value) reflect.Value {
	v := f.raw(target)
	if f.Optional {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}

// isZero reports whether the field inside target still holds its zero
// value (nil for optional fields).
func (f *fieldInfo) isZero(target reflect.Value) bool {
	return f.raw(target).IsZero()
}

func (c *builder) getFields(rt reflect.Type) ([]*fieldInfo, error) {
	return c.appendFields(nil, rt, nil)
}

func (c *builder) appendFields(fields []*fieldInfo, rt reflect.Type, index []int) ([]*fieldInfo, error) {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		idx := make([]int, 0, len(index)+1)
		idx = append(append(idx, index...), i)

		meta, _, err := parseTagMeta(sf.Tag)
		if err != nil {
			return nil, definitionErrorf(c.typeName(), sf.Name, "%s", err)
		}

		// Anonymous embedded structs flatten into the parent's argument
		// set, mirroring how their fields promote in Go.
		if sf.Anonymous {
			et := sf.Type
			if et.Kind() == reflect.Ptr {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				if meta.excluded {
					continue
				}
				fields, err = c.appendFields(fields, et, idx)
				if err != nil {
					return nil, err
				}
				continue
			}
		}

		c.seen[sf.Name] = true

		// Tag metadata first, programmatic metadata second, so Field
		// options win over struct tags.
		if prog, ok := c.fieldMeta[sf.Name]; ok {
			meta = Combine(meta, prog)
		}
		if meta.err != nil {
			return nil, definitionErrorf(c.typeName(), sf.Name, "%s", meta.err)
		}

		if !c.includeField(sf.Name, sf, meta) {
			continue
		}

		fi, err := c.newFieldInfo(sf, idx, meta)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fi)
	}
	return fields, nil
}

func (c *builder) newFieldInfo(sf reflect.StructField, index []int, meta Meta) (*fieldInfo, error) {
	fi := &fieldInfo{
		Name:  sf.Name,
		Index: index,
		Meta:  meta,
	}
	fi.CLIName = meta.name
	if fi.CLIName == "" {
		fi.CLIName = xstrings.ToKebabCase(sf.Name)
	}

	t := sf.Type
	if t.Kind() == reflect.Ptr {
		fi.Optional = true
		t = t.Elem()
	}
	fi.Type = t

	// Types that parse themselves stay opaque scalars even when their
	// underlying kind is a slice or map.
	if !c.opaqueScalar(t) {
		switch t.Kind() {
		case reflect.Bool:
			fi.IsBool = true
		case reflect.Slice:
			fi.IsSlice = true
			fi.Elem = t.Elem()
		case reflect.Map:
			if t.Key().Kind() != reflect.String {
				return nil, definitionErrorf(c.typeName(), sf.Name, "map key type must be string (got %s)", t.Key())
			}
			fi.IsMap = true
		}
	}
	return fi, nil
}

func (c *builder) opaqueScalar(t reflect.Type) bool {
	probe := reflect.New(t)
	for _, i := range []interface{}{probe.Elem().Interface(), probe.Interface()} {
		if c.setter != nil && c.setter(i) != nil {
			return true
		}
		switch i.(type) {
		case Setter, encoding.TextUnmarshaler, encoding.BinaryUnmarshaler:
			return true
		}
	}
	return false
}
