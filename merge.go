package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// run scans one argument vector and applies the merge pipeline to
// target: defaults are already present (target starts as a clone of the
// seed), then the base config file, then environment variables, then
// command-line values, then map-field file-plus-override merging, then
// choices and required validation, then the config's own Validate hook.
func (c *builder) run(args []string, target reflect.Value) error {
	cl := newCmdline()
	p := &parser{byName: c.byName, positionals: c.positionals, cl: cl}
	if err := p.parse(args); err != nil {
		// a help request wins over scan errors
		if cl.help {
			return ErrHelp
		}
		return err
	}
	if cl.help {
		return ErrHelp
	}

	touched := map[string]bool{}
	if err := c.applyFileLayer(cl, target, touched); err != nil {
		return err
	}
	if err := c.applyEnvLayer(cl, target, touched); err != nil {
		return err
	}
	if err := c.applyArgLayer(cl, target, touched); err != nil {
		return err
	}
	if err := c.applyMapLayer(cl, target, touched); err != nil {
		return err
	}
	if err := c.checkChoices(target, touched); err != nil {
		return err
	}
	if err := c.checkRequired(touched); err != nil {
		return err
	}
	return validate(target)
}

// applyFileLayer merges the base config file, when one was named. Keys
// match the argument name, its snake_case spelling, or the Go field
// name; unknown keys are ignored.
func (c *builder) applyFileLayer(cl *cmdline, target reflect.Value, touched map[string]bool) error {
	if cl.configPath == "" {
		return nil
	}
	tree, err := loadConfigTree(cl.configPath)
	if err != nil {
		return err
	}
	for _, fi := range c.fields {
		raw, ok := lookupTree(tree, fi)
		if !ok {
			continue
		}
		if err := c.assignTreeValue(fi, target, raw); err != nil {
			return err
		}
		touched[fi.Name] = true
	}
	return nil
}

func lookupTree(tree map[string]interface{}, fi *fieldInfo) (interface{}, bool) {
	for _, key := range []string{fi.CLIName, strings.ReplaceAll(fi.CLIName, "-", "_"), fi.Name} {
		if raw, ok := tree[key]; ok {
			return raw, true
		}
	}
	return nil, false
}

// applyEnvLayer fills fields from their environment variables. A field
// that already has command-line tokens skips the lookup entirely, so a
// malformed environment value cannot fail a parse that overrides it.
func (c *builder) applyEnvLayer(cl *cmdline, target reflect.Value, touched map[string]bool) error {
	lookup := c.lookupEnv
	if lookup == nil {
		lookup = OSLookupEnv
	}
	for _, fi := range c.fields {
		a := c.argOf[fi.Name]
		if a == nil || a.env == "" {
			continue
		}
		if cl.explicit(fi.Name) {
			continue
		}
		val, ok, err := lookup(a.env)
		if err != nil {
			return errors.Wrapf(err, "looking up env var %s", a.env)
		}
		if !ok {
			continue
		}
		if err := c.applyTokens(a, target, []string{val}); err != nil {
			return err
		}
		touched[fi.Name] = true
	}
	return nil
}

// applyArgLayer coerces the captured command-line tokens into their
// fields. Map fields merge later, in their own layer.
func (c *builder) applyArgLayer(cl *cmdline, target reflect.Value, touched map[string]bool) error {
	for _, fi := range c.fields {
		if fi.IsMap {
			continue
		}
		rv, ok := cl.raw[fi.Name]
		if !ok || rv.count == 0 {
			continue
		}
		a := c.argOf[fi.Name]
		if err := c.applyTokens(a, target, rv.tokens); err != nil {
			return err
		}
		touched[fi.Name] = true
	}
	return nil
}

// applyMapLayer merges map fields: the current value (defaults or base
// config) is shallow-merged with the nested config file, then each
// KEY:VALUE override applies in command-line order.
func (c *builder) applyMapLayer(cl *cmdline, target reflect.Value, touched map[string]bool) error {
	for _, fi := range c.fields {
		if !fi.IsMap {
			continue
		}
		rv := cl.raw[fi.Name]
		overrides := cl.overrides[fi.Name]
		if (rv == nil || rv.count == 0) && len(overrides) == 0 {
			continue
		}

		working := map[string]interface{}{}
		cur := fi.raw(target)
		if fi.Optional && !cur.IsNil() {
			cur = cur.Elem()
		}
		if cur.Kind() == reflect.Map && !cur.IsNil() {
			for it := cur.MapRange(); it.Next(); {
				working[it.Key().String()] = it.Value().Interface()
			}
		}

		if rv != nil && rv.count > 0 {
			tree, err := loadConfigTree(rv.tokens[0])
			if err != nil {
				return err
			}
			shallowMerge(working, tree)
		}
		for _, o := range overrides {
			if err := applyOverride(working, o); err != nil {
				over := c.overrideOf[fi.Name]
				return ValueError{Field: over.displayName(), Value: o, Cause: err}
			}
		}

		if err := c.assignTreeValue(fi, target, working); err != nil {
			return err
		}
		touched[fi.Name] = true
	}
	return nil
}

// applyTokens coerces raw tokens into a field. Scalars take the last
// token, sequences rebuild the whole slice, and file-loadable scalars
// resolve @path indirection first.
func (c *builder) applyTokens(a *arg, target reflect.Value, tokens []string) error {
	fi := a.field
	switch {
	case fi.IsBool:
		tok := tokens[len(tokens)-1]
		v, err := strconv.ParseBool(tok)
		if err != nil {
			return c.valueError(fi, tok, fmt.Errorf("invalid boolean value"))
		}
		fi.alloc(target).SetBool(v)
	case fi.IsSlice:
		if err := checkArity(a, len(tokens)); err != nil {
			return err
		}
		slice := reflect.MakeSlice(fi.Type, len(tokens), len(tokens))
		for i, tok := range tokens {
			elem := slice.Index(i)
			if fi.Elem.Kind() == reflect.Ptr {
				pv := reflect.New(fi.Elem.Elem())
				if err := c.setToken(fi, pv.Elem(), tok); err != nil {
					return err
				}
				elem.Set(pv)
				continue
			}
			if err := c.setToken(fi, elem, tok); err != nil {
				return err
			}
		}
		fi.alloc(target).Set(slice)
	default:
		tok, err := resolveFileValue(a, tokens[len(tokens)-1])
		if err != nil {
			return err
		}
		if err := c.setToken(fi, fi.alloc(target), tok); err != nil {
			return err
		}
	}
	return nil
}

func (c *builder) setToken(fi *fieldInfo, dst reflect.Value, token string) error {
	set, err := setterFor(dst, c.setter)
	if err != nil {
		return c.valueError(fi, token, err)
	}
	if err := set.Set(token); err != nil {
		return c.valueError(fi, token, err)
	}
	return nil
}

func checkArity(a *arg, n int) error {
	if n < a.arity.Min {
		return fmt.Errorf("%s requires at least %d value(s)", a.displayName(), a.arity.Min)
	}
	if !a.arity.variadic() && n > a.arity.Max {
		return fmt.Errorf("%s takes at most %d value(s)", a.displayName(), a.arity.Max)
	}
	return nil
}

// assignTreeValue converts a decoded config tree value into the field.
func (c *builder) assignTreeValue(fi *fieldInfo, target reflect.Value, raw interface{}) error {
	fv := fi.raw(target)
	if raw == nil {
		// an explicit null clears the field
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	if fi.Optional {
		fv = fi.alloc(target)
	}
	return c.assignAny(fi, fv, raw)
}

// assignAny converts a decoded value into dst. Strings run through the
// field's coercion path so durations, self-parsing types, and custom
// setters behave the same whether a value came from a file or the
// command line.
func (c *builder) assignAny(fi *fieldInfo, dst reflect.Value, raw interface{}) error {
	if raw == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}

	switch src := raw.(type) {
	case string:
		return c.setToken(fi, dst, src)
	case bool:
		if dst.Kind() == reflect.Bool {
			dst.SetBool(src)
			return nil
		}
	case []interface{}:
		if dst.Kind() == reflect.Slice {
			out := reflect.MakeSlice(dst.Type(), len(src), len(src))
			for i, elem := range src {
				if err := c.assignAny(fi, out.Index(i), elem); err != nil {
					return err
				}
			}
			dst.Set(out)
			return nil
		}
	case map[string]interface{}:
		if dst.Kind() == reflect.Map {
			out := reflect.MakeMapWithSize(dst.Type(), len(src))
			kt, vt := dst.Type().Key(), dst.Type().Elem()
			for k, v := range src {
				ev := reflect.New(vt).Elem()
				if err := c.assignAny(fi, ev, v); err != nil {
					return err
				}
				out.SetMapIndex(reflect.ValueOf(k).Convert(kt), ev)
			}
			dst.Set(out)
			return nil
		}
	}

	if done, err := assignNumber(dst, raw); done {
		if err != nil {
			return c.valueError(fi, fmt.Sprintf("%v", raw), err)
		}
		return nil
	}
	return c.valueError(fi, fmt.Sprintf("%v", raw),
		fmt.Errorf("cannot use %T as %s", raw, dst.Type()))
}

// assignNumber handles the numeric shapes the decoders produce: JSON and
// HCL numbers arrive as float64, YAML as int or float64, TOML as int64
// or float64. Lossy conversions are errors, not truncations.
func assignNumber(dst reflect.Value, raw interface{}) (bool, error) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		switch dst.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if dst.OverflowInt(n) {
				return true, fmt.Errorf("value %d overflows %s", n, dst.Type())
			}
			dst.SetInt(n)
			return true, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n < 0 || dst.OverflowUint(uint64(n)) {
				return true, fmt.Errorf("value %d overflows %s", n, dst.Type())
			}
			dst.SetUint(uint64(n))
			return true, nil
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(float64(n))
			return true, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := rv.Uint()
		switch dst.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n > 1<<63-1 || dst.OverflowInt(int64(n)) {
				return true, fmt.Errorf("value %d overflows %s", n, dst.Type())
			}
			dst.SetInt(int64(n))
			return true, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if dst.OverflowUint(n) {
				return true, fmt.Errorf("value %d overflows %s", n, dst.Type())
			}
			dst.SetUint(n)
			return true, nil
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(float64(n))
			return true, nil
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch dst.Kind() {
		case reflect.Float32, reflect.Float64:
			dst.SetFloat(f)
			return true, nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := int64(f)
			if float64(n) != f {
				return true, fmt.Errorf("number %v is not an integer", f)
			}
			if dst.OverflowInt(n) {
				return true, fmt.Errorf("value %v overflows %s", f, dst.Type())
			}
			dst.SetInt(n)
			return true, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			n := int64(f)
			if float64(n) != f || n < 0 {
				return true, fmt.Errorf("number %v is not an unsigned integer", f)
			}
			if dst.OverflowUint(uint64(n)) {
				return true, fmt.Errorf("value %v overflows %s", f, dst.Type())
			}
			dst.SetUint(uint64(n))
			return true, nil
		}
	}
	return false, nil
}

// checkChoices validates final values against their choices sets. A
// field no layer touched that still holds its zero value is exempt; an
// untouched non-zero default was validated at build time.
func (c *builder) checkChoices(target reflect.Value, touched map[string]bool) error {
	for _, fi := range c.fields {
		choices := fi.Meta.choices
		if len(choices) == 0 {
			continue
		}
		if !touched[fi.Name] && fi.isZero(target) {
			continue
		}
		v := fi.raw(target)
		if fi.Optional {
			if v.IsNil() {
				continue
			}
			v = v.Elem()
		}
		name := c.argOf[fi.Name].displayName()
		if fi.IsSlice {
			for i := 0; i < v.Len(); i++ {
				if err := checkChoice(name, v.Index(i), choices); err != nil {
					return err
				}
			}
			continue
		}
		if err := checkChoice(name, v, choices); err != nil {
			return err
		}
	}
	return nil
}

func checkChoice(name string, v reflect.Value, choices []string) error {
	s := renderValue(v)
	for _, choice := range choices {
		if s == choice {
			return nil
		}
	}
	return ValueError{Field: name, Value: s, Choices: choices}
}

func renderValue(v reflect.Value) string {
	if str := stringerFor(v); str != nil {
		return str.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func (c *builder) checkRequired(touched map[string]bool) error {
	for _, a := range c.args {
		if a.required && a.field != nil && !touched[a.field.Name] {
			return fmt.Errorf("required flag not set: --%s", a.long)
		}
	}
	for _, a := range c.positionals {
		if a.required && !touched[a.field.Name] {
			return fmt.Errorf("missing required argument: %s", a.metavar)
		}
	}
	return nil
}

func (c *builder) valueError(fi *fieldInfo, value string, cause error) error {
	name := fi.CLIName
	if a, ok := c.argOf[fi.Name]; ok {
		name = a.displayName()
	}
	return ValueError{Field: name, Value: value, Cause: cause}
}

// cloneValue returns a deep copy of v. Maps, slices, and pointers are
// duplicated so parse results never alias the defaults snapshot.
func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneValue(v.Elem()))
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		for it := v.MapRange(); it.Next(); {
			out.SetMapIndex(it.Key(), cloneValue(it.Value()))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneValue(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < out.NumField(); i++ {
			f := out.Field(i)
			if !f.CanSet() {
				continue
			}
			switch f.Kind() {
			case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Array, reflect.Struct, reflect.Interface:
				f.Set(cloneValue(f))
			}
		}
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneValue(v.Elem()))
		return out
	default:
		return v
	}
}
