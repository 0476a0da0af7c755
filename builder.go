package cli

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// builder is the non-generic core behind every Builder[T].
type builder struct {
	name        string
	description string
	configFlag  string

	fieldMeta map[string]Meta
	includes  map[string]bool
	excludes  map[string]bool
	filter    FilterFunc

	errWriter  io.Writer
	helpWriter io.Writer
	lookupEnv  LookupEnvFunc
	setter     SetterFunc

	rtype reflect.Type
	seed  reflect.Value // defaults snapshot, deep-cloned from the caller's value
	seen  map[string]bool

	fields      []*fieldInfo
	args        []*arg
	positionals []*arg
	byName      map[string]*arg
	argOf       map[string]*arg
	overrideOf  map[string]*arg
}

func newBuilderCore(name string) *builder {
	return &builder{
		name:       name,
		configFlag: "config",
		fieldMeta:  map[string]Meta{},
		errWriter:  os.Stderr,
		seen:       map[string]bool{},
	}
}

func (c *builder) typeName() string {
	if c.rtype == nil {
		return "config"
	}
	return c.rtype.String()
}

// Option configures a Builder at build time.
type Option interface {
	apply(c *builder) error
}

type optionFunc func(c *builder) error

func (f optionFunc) apply(c *builder) error { return f(c) }

// Field attaches metadata to the named struct field. It combines with
// (and wins over) any metadata from the field's struct tag, and multiple
// Field options for the same field accumulate.
func Field(name string, metas ...Meta) Option {
	return optionFunc(func(c *builder) error {
		c.fieldMeta[name] = Combine(append([]Meta{c.fieldMeta[name]}, metas...)...)
		return nil
	})
}

// Include restricts the interface to the named fields. Fields explicitly
// marked included or excluded keep their markers regardless.
func Include(names ...string) Option {
	return optionFunc(func(c *builder) error {
		if c.includes == nil {
			c.includes = map[string]bool{}
		}
		for _, n := range names {
			c.includes[n] = true
		}
		return nil
	})
}

// Exclude removes the named fields from the interface.
func Exclude(names ...string) Option {
	return optionFunc(func(c *builder) error {
		if c.excludes == nil {
			c.excludes = map[string]bool{}
		}
		for _, n := range names {
			c.excludes[n] = true
		}
		return nil
	})
}

// WithFilter sets a predicate consulted for fields that get no verdict
// from metadata or the include/exclude lists.
func WithFilter(f FilterFunc) Option {
	return optionFunc(func(c *builder) error {
		c.filter = f
		return nil
	})
}

// WithDescription sets the text shown at the top of help output.
func WithDescription(text string) Option {
	return optionFunc(func(c *builder) error {
		c.description = text
		return nil
	})
}

// WithConfigFlag renames the base config file option, which defaults to
// --config. An empty name removes the option.
func WithConfigFlag(name string) Option {
	return optionFunc(func(c *builder) error {
		c.configFlag = name
		return nil
	})
}

// WithErrWriter redirects error output, which defaults to os.Stderr.
func WithErrWriter(w io.Writer) Option {
	return optionFunc(func(c *builder) error {
		c.errWriter = w
		return nil
	})
}

// WithHelpWriter redirects help output, which defaults to the error
// writer.
func WithHelpWriter(w io.Writer) Option {
	return optionFunc(func(c *builder) error {
		c.helpWriter = w
		return nil
	})
}

// WithLookupEnv replaces the environment source, which defaults to
// OSLookupEnv.
func WithLookupEnv(fn LookupEnvFunc) Option {
	return optionFunc(func(c *builder) error {
		c.lookupEnv = fn
		return nil
	})
}

// WithSetter installs a hook that can supply custom value coercion for
// field types the default rules don't cover, or override them.
func WithSetter(fn SetterFunc) Option {
	return optionFunc(func(c *builder) error {
		c.setter = fn
		return nil
	})
}

// Builder is a compiled command-line interface for the config type T.
// Building is separate from parsing so definition problems surface
// eagerly and one Builder can parse many argument vectors.
type Builder[T any] struct {
	core *builder
}

// Build compiles a command-line interface from T's fields. The defaults
// value is deep-copied and seeds every parse; passing nil starts from
// T's zero value.
func Build[T any](name string, defaults *T, opts ...Option) (*Builder[T], error) {
	c := newBuilderCore(name)

	var zero T
	rt := reflect.TypeOf(zero)
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, definitionErrorf(fmt.Sprintf("%T", zero), "", "config type must be a struct")
	}
	c.rtype = rt

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}
	if c.includes != nil && c.excludes != nil {
		return nil, definitionErrorf(c.typeName(), "", "Include and Exclude cannot both be given")
	}

	if defaults != nil {
		c.seed = cloneValue(reflect.ValueOf(defaults).Elem())
	} else {
		c.seed = reflect.New(rt).Elem()
	}

	fields, err := c.getFields(rt)
	if err != nil {
		return nil, err
	}
	c.fields = fields

	for fname := range c.fieldMeta {
		if !c.seen[fname] {
			return nil, definitionErrorf(c.typeName(), fname, "no such field")
		}
	}

	if err := c.applyDefaultLiterals(); err != nil {
		return nil, err
	}
	if err := c.synthesize(); err != nil {
		return nil, err
	}
	if err := c.probeSetters(); err != nil {
		return nil, err
	}
	if err := c.checkDefaultChoices(); err != nil {
		return nil, err
	}
	c.renderDefaults()

	return &Builder[T]{core: c}, nil
}

// New is like Build but panics on definition errors, which suits
// package-level initialization where a bad definition is fatal anyway.
func New[T any](name string, defaults *T, opts ...Option) *Builder[T] {
	b, err := Build(name, defaults, opts...)
	if err != nil {
		panic(fmt.Sprintf("cli: %s", err))
	}
	return b
}

// Parse parses os.Args.
func (b *Builder[T]) Parse() Result[T] {
	return b.ParseArgs(os.Args[1:])
}

// ParseArgs parses the given argument vector, which must not include the
// program name. Every call starts from a fresh copy of the defaults, so
// a Builder can be reused and results never alias each other.
func (b *Builder[T]) ParseArgs(args []string) Result[T] {
	cfg := new(T)
	target := reflect.ValueOf(cfg).Elem()
	target.Set(cloneValue(b.core.seed))
	err := b.core.run(args, target)
	return Result[T]{Config: cfg, Err: err, builder: b}
}

// WriteHelp writes usage help to w.
func (b *Builder[T]) WriteHelp(w io.Writer) {
	b.core.writeHelp(w)
}

// HelpString renders usage help.
func (b *Builder[T]) HelpString() string {
	sb := strings.Builder{}
	b.core.writeHelp(&sb)
	return sb.String()
}

// Parse builds a one-shot interface for T and parses os.Args.
func Parse[T any](name string, defaults *T, opts ...Option) (*T, error) {
	b, err := Build(name, defaults, opts...)
	if err != nil {
		return nil, err
	}
	r := b.Parse()
	return r.Config, r.Err
}

// ParseArgs builds a one-shot interface for T and parses args.
func ParseArgs[T any](name string, defaults *T, args []string, opts ...Option) (*T, error) {
	b, err := Build(name, defaults, opts...)
	if err != nil {
		return nil, err
	}
	r := b.ParseArgs(args)
	return r.Config, r.Err
}

// applyDefaultLiterals folds default= literals into the seed snapshot so
// help output and every parse see them.
func (c *builder) applyDefaultLiterals() error {
	for _, fi := range c.fields {
		m := fi.Meta
		if m.set&attrDefault == 0 {
			continue
		}
		if m.defval == "" {
			fv := fi.raw(c.seed)
			fv.Set(reflect.Zero(fv.Type()))
			continue
		}
		target := fi.alloc(c.seed)
		if fi.IsBool {
			v, err := strconv.ParseBool(m.defval)
			if err != nil {
				return definitionErrorf(c.typeName(), fi.Name, "invalid default %q: not a boolean", m.defval)
			}
			target.SetBool(v)
			continue
		}
		set, err := setterFor(target, c.setter)
		if err != nil {
			return definitionErrorf(c.typeName(), fi.Name, "%s", err)
		}
		if err := set.Set(m.defval); err != nil {
			return definitionErrorf(c.typeName(), fi.Name, "invalid default %q: %s", m.defval, err)
		}
	}
	return nil
}

// probeSetters fails fast when a field has no usable coercion path, so
// the problem surfaces at build time rather than mid-parse.
func (c *builder) probeSetters() error {
	for _, fi := range c.fields {
		if fi.IsMap || fi.IsBool {
			continue
		}
		t := fi.Type
		if fi.IsSlice {
			t = fi.Elem
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
		}
		probe := reflect.New(t).Elem()
		if _, err := setterFor(probe, c.setter); err != nil {
			return definitionErrorf(c.typeName(), fi.Name, "%s", err)
		}
	}
	return nil
}

// checkDefaultChoices enforces that a declared default is admissible
// under the field's choices.
func (c *builder) checkDefaultChoices() error {
	for _, fi := range c.fields {
		choices := fi.Meta.choices
		if len(choices) == 0 || fi.isZero(c.seed) {
			continue
		}
		v := fi.raw(c.seed)
		if fi.Optional {
			v = v.Elem()
		}
		check := func(val reflect.Value) error {
			s := renderValue(val)
			for _, choice := range choices {
				if s == choice {
					return nil
				}
			}
			return definitionErrorf(c.typeName(), fi.Name,
				"default %q is not one of the choices (%s)", s, strings.Join(choices, ", "))
		}
		if fi.IsSlice {
			for i := 0; i < v.Len(); i++ {
				if err := check(v.Index(i)); err != nil {
					return err
				}
			}
			continue
		}
		if err := check(v); err != nil {
			return err
		}
	}
	return nil
}

// renderDefaults precomputes the default hints shown in help output.
// Zero values render as no hint at all.
func (c *builder) renderDefaults() {
	for _, a := range c.args {
		fi := a.field
		if fi == nil || fi.IsMap || a.kind == kindOverride {
			continue
		}
		m := fi.Meta
		if m.hideDefault || (m.set&attrDefault != 0 && m.defval == "") {
			continue
		}
		if m.set&attrDefault != 0 {
			a.defStr = m.defval
			continue
		}
		if fi.isZero(c.seed) {
			continue
		}
		v := fi.raw(c.seed)
		if fi.Optional {
			v = v.Elem()
		}
		a.defStr = renderValue(v)
	}
}
