package cli

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type argKind int

const (
	// kindOption is a named option bound to a non-map field.
	kindOption argKind = iota
	// kindPositional is a positional argument.
	kindPositional
	// kindMapFile is the option taking a nested config file path for a
	// map field.
	kindMapFile
	// kindOverride is the repeatable key:value override option paired
	// with a kindMapFile option.
	kindOverride
	// kindHelp and kindConfig are the built-in --help and base config
	// file options.
	kindHelp
	kindConfig
)

// arg is one synthesized command-line argument.
type arg struct {
	field *fieldInfo // nil for kindHelp and kindConfig
	kind  argKind

	long        string
	short       string
	negLong     string // boolean disable form, "no-" + long
	arity       Arity
	metavar     string // positional display name
	placeholder string // option value placeholder
	help        string
	defStr      string
	choices     []string
	required    bool
	hidden      bool
	env         string
	fileLoad    bool
	isBool      bool
}

func (a *arg) displayName() string {
	if a.kind == kindPositional {
		return a.metavar
	}
	return "--" + a.long
}

// usageMetavar renders how the argument appears in a usage line.
func (a *arg) usageMetavar() string {
	switch {
	case a.arity == ZeroOrOne:
		return fmt.Sprintf("[%s]", a.metavar)
	case a.arity == ZeroOrMore:
		return fmt.Sprintf("[%s ...]", a.metavar)
	case a.arity == OneOrMore:
		return fmt.Sprintf("%s [%s ...]", a.metavar, a.metavar)
	case a.arity.Min > 1:
		parts := make([]string, a.arity.Min)
		for i := range parts {
			parts[i] = a.metavar
		}
		return strings.Join(parts, " ")
	default:
		return a.metavar
	}
}

// overrideName derives the short override flag for a map field from the
// initials of its kebab-case name: model-config becomes mc, settings
// becomes s.
func overrideName(cliName string) string {
	var b strings.Builder
	for _, part := range strings.Split(cliName, "-") {
		if part == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(r)
	}
	return b.String()
}

func defaultMetavar(cliName string) string {
	return strings.ToUpper(strings.ReplaceAll(cliName, "-", "_"))
}

// synthesize builds the argument set for the introspected fields:
// booleans become paired --name/--no-name flags, maps become a file
// option plus a repeatable override option, everything else becomes a
// value option or a positional. All names must be collision-free within
// the single flat namespace.
func (c *builder) synthesize() error {
	c.byName = map[string]*arg{}
	c.argOf = map[string]*arg{}
	c.overrideOf = map[string]*arg{}

	helpArg := &arg{kind: kindHelp, long: "help", short: "h", help: "show usage help"}
	if err := c.reserve(helpArg.long, helpArg); err != nil {
		return err
	}
	if err := c.reserve(helpArg.short, helpArg); err != nil {
		return err
	}
	c.args = append(c.args, helpArg)

	if c.configFlag != "" {
		cfgArg := &arg{
			kind:        kindConfig,
			long:        c.configFlag,
			arity:       ExactlyOne,
			placeholder: "FILE",
			help:        "base configuration file (JSON, YAML, TOML, or HCL)",
		}
		if err := c.reserve(cfgArg.long, cfgArg); err != nil {
			return err
		}
		c.args = append(c.args, cfgArg)
	}

	for _, fi := range c.fields {
		if err := c.synthesizeField(fi); err != nil {
			return err
		}
	}

	return c.validatePositionals()
}

func (c *builder) synthesizeField(fi *fieldInfo) error {
	m := fi.Meta
	if err := c.checkFieldMeta(fi); err != nil {
		return err
	}

	if m.positional {
		a := &arg{
			field:    fi,
			kind:     kindPositional,
			long:     fi.CLIName,
			arity:    c.positionalArity(fi),
			metavar:  m.metavar,
			help:     m.help,
			choices:  m.choices,
			fileLoad: m.fileLoadable,
			hidden:   m.hidden,
			env:      m.env,
			required: m.required,
		}
		if a.metavar == "" {
			a.metavar = defaultMetavar(fi.CLIName)
		}
		if a.help == "" {
			a.help = defaultHelp(fi.CLIName)
		}
		c.positionals = append(c.positionals, a)
		c.argOf[fi.Name] = a
		return nil
	}

	if fi.IsMap {
		main := &arg{
			field:       fi,
			kind:        kindMapFile,
			long:        fi.CLIName,
			short:       shortString(m.short),
			arity:       ExactlyOne,
			placeholder: "FILE",
			help:        m.help,
			hidden:      m.hidden,
			required:    m.required,
		}
		if main.help == "" {
			main.help = defaultHelp(fi.CLIName)
		}
		over := &arg{
			field:       fi,
			kind:        kindOverride,
			long:        overrideName(fi.CLIName),
			arity:       ExactlyOne,
			placeholder: "KEY:VALUE",
			help:        fmt.Sprintf("override a %s value (KEY[.PATH]:VALUE)", fi.CLIName),
			hidden:      m.hidden,
		}
		for _, a := range []*arg{main, over} {
			if err := c.reserve(a.long, a); err != nil {
				return err
			}
		}
		if err := c.reserve(main.short, main); err != nil {
			return err
		}
		c.args = append(c.args, main, over)
		c.argOf[fi.Name] = main
		c.overrideOf[fi.Name] = over
		return nil
	}

	a := &arg{
		field:       fi,
		kind:        kindOption,
		long:        fi.CLIName,
		short:       shortString(m.short),
		placeholder: m.placeholder,
		help:        m.help,
		choices:     m.choices,
		required:    m.required,
		hidden:      m.hidden,
		env:         m.env,
		fileLoad:    m.fileLoadable,
		isBool:      fi.IsBool,
	}
	switch {
	case fi.IsBool:
		a.negLong = "no-" + a.long
	case fi.IsSlice:
		a.arity = c.sequenceArity(fi)
		if a.placeholder == "" {
			a.placeholder = "VALUE ..."
		}
	default:
		a.arity = ExactlyOne
	}
	if a.help == "" {
		a.help = defaultHelp(fi.CLIName)
	}
	if len(a.choices) > 0 {
		a.help = appendHelp(a.help, fmt.Sprintf("(choices: %s)", strings.Join(a.choices, ", ")))
	}
	if a.fileLoad {
		a.help = appendHelp(a.help, "(use @PATH to load the value from a file)")
	}
	for _, name := range []string{a.long, a.short, a.negLong} {
		if err := c.reserve(name, a); err != nil {
			return err
		}
	}
	c.args = append(c.args, a)
	c.argOf[fi.Name] = a
	return nil
}

// checkFieldMeta rejects metadata combinations that cannot be realized.
func (c *builder) checkFieldMeta(fi *fieldInfo) error {
	m := fi.Meta
	def := func(format string, args ...interface{}) error {
		return definitionErrorf(c.typeName(), fi.Name, format, args...)
	}
	if m.set&attrName != 0 && m.name == "" {
		return def("argument name must not be empty")
	}
	if m.set&attrShort != 0 {
		if m.positional {
			return def("short flag not allowed for positional arguments")
		}
		if !unicode.IsLetter(m.short) && !unicode.IsDigit(m.short) {
			return def("short name must be a letter or digit (got %q)", m.short)
		}
	}
	if m.positional && fi.IsBool {
		return def("boolean fields cannot be positional")
	}
	if m.positional && fi.IsMap {
		return def("map fields cannot be positional")
	}
	if len(m.choices) > 0 && (fi.IsBool || fi.IsMap) {
		return def("choices are not supported for %s fields", kindWord(fi))
	}
	if m.set&attrArity != 0 && !m.positional && !fi.IsSlice {
		return def("nargs only applies to positional or sequence fields")
	}
	if m.set&attrEnv != 0 && fi.IsMap {
		return def("environment lookup is not supported for map fields")
	}
	if m.fileLoadable && (fi.IsBool || fi.IsMap || fi.IsSlice) {
		return def("file loading is only supported for scalar fields")
	}
	if m.set&attrDefault != 0 && (fi.IsMap || fi.IsSlice) {
		return def("default literals are not supported for %s fields", kindWord(fi))
	}
	return nil
}

func kindWord(fi *fieldInfo) string {
	switch {
	case fi.IsBool:
		return "boolean"
	case fi.IsMap:
		return "map"
	case fi.IsSlice:
		return "sequence"
	default:
		return "scalar"
	}
}

func (c *builder) positionalArity(fi *fieldInfo) Arity {
	if fi.Meta.set&attrArity != 0 {
		return fi.Meta.arity
	}
	switch {
	case fi.IsSlice && fi.Optional:
		return ZeroOrMore
	case fi.IsSlice:
		return OneOrMore
	case fi.Optional:
		return ZeroOrOne
	default:
		return ExactlyOne
	}
}

func (c *builder) sequenceArity(fi *fieldInfo) Arity {
	if fi.Meta.set&attrArity != 0 {
		return fi.Meta.arity
	}
	if fi.Optional {
		return ZeroOrMore
	}
	return OneOrMore
}

// validatePositionals enforces the shape constraints on positional
// arguments: at most one unbounded positional, and it must come last so
// token distribution stays unambiguous.
func (c *builder) validatePositionals() error {
	variadicAt := -1
	for i, p := range c.positionals {
		if !p.arity.variadic() {
			continue
		}
		if variadicAt >= 0 {
			return definitionErrorf(c.typeName(), p.field.Name,
				"only one variable-arity positional is allowed (%s already is)",
				c.positionals[variadicAt].field.Name)
		}
		variadicAt = i
	}
	if variadicAt >= 0 && variadicAt != len(c.positionals)-1 {
		p := c.positionals[variadicAt]
		return definitionErrorf(c.typeName(), p.field.Name,
			"variable-arity positional must be the last positional argument")
	}
	return nil
}

func (c *builder) reserve(name string, a *arg) error {
	if name == "" {
		return nil
	}
	if prev, ok := c.byName[name]; ok {
		return definitionErrorf(c.typeName(), argOwner(a),
			"argument name %q collides with %s", name, describeArg(prev))
	}
	c.byName[name] = a
	return nil
}

func argOwner(a *arg) string {
	if a.field != nil {
		return a.field.Name
	}
	return ""
}

func describeArg(a *arg) string {
	switch a.kind {
	case kindHelp:
		return "the built-in help flag"
	case kindConfig:
		return "the base config file flag"
	case kindOverride:
		return fmt.Sprintf("the override flag for field %s", a.field.Name)
	default:
		return fmt.Sprintf("field %s", a.field.Name)
	}
}

func shortString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

func appendHelp(help, extra string) string {
	if help == "" {
		return extra
	}
	return help + " " + extra
}

// defaultHelp derives help text from a CLI name when the field declares
// none: "max-tokens" reads as "max tokens".
func defaultHelp(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}
