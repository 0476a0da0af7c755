package cli

import (
	"fmt"
	"strconv"
)

// Arity says how many values an argument consumes. Max < 0 means unbounded.
type Arity struct {
	Min int
	Max int
}

var (
	// ExactlyOne consumes a single value. This is the default for scalar
	// positionals.
	ExactlyOne = Arity{Min: 1, Max: 1}
	// ZeroOrOne consumes a value only if one is available after later
	// positionals have been accounted for.
	ZeroOrOne = Arity{Min: 0, Max: 1}
	// ZeroOrMore consumes any number of values, including none.
	ZeroOrMore = Arity{Min: 0, Max: -1}
	// OneOrMore consumes at least one value. This is the default for
	// sequence positionals and sequence options.
	OneOrMore = Arity{Min: 1, Max: -1}
)

// Exactly returns an arity consuming exactly n values.
func Exactly(n int) Arity {
	return Arity{Min: n, Max: n}
}

func (a Arity) variadic() bool { return a.Max < 0 }

func (a Arity) valid() bool {
	if a.Max < 0 {
		return a.Min >= 0
	}
	return a.Min >= 0 && a.Max >= a.Min && a.Max >= 1
}

func (a Arity) String() string {
	switch {
	case a == ExactlyOne:
		return "1"
	case a == ZeroOrOne:
		return "?"
	case a == ZeroOrMore:
		return "*"
	case a == OneOrMore:
		return "+"
	case a.Min == a.Max:
		return strconv.Itoa(a.Min)
	default:
		return fmt.Sprintf("%d..%d", a.Min, a.Max)
	}
}

// metaAttr tracks which single-valued attributes a Meta carries, so that
// merging can distinguish "set to empty" from "never set".
type metaAttr uint16

const (
	attrName metaAttr = 1 << iota
	attrShort
	attrHelp
	attrPlaceholder
	attrMetavar
	attrEnv
	attrDefault
	attrChoices
	attrArity
)

// Meta is an immutable bag of per-field argument metadata. Bags come from
// two channels, struct tags and the Field option, and are folded together
// with Combine semantics: later bags win for single-valued attributes,
// boolean markers accumulate. The zero Meta carries nothing.
type Meta struct {
	set metaAttr

	name        string
	short       rune
	help        string
	placeholder string
	metavar     string
	env         string
	defval      string
	choices     []string
	arity       Arity

	positional   bool
	fileLoadable bool
	required     bool
	hidden       bool
	hideDefault  bool
	included     bool
	excluded     bool

	// err records the first conflict detected while building or merging
	// bags; Build surfaces it as a DefinitionError.
	err error
}

// Name overrides the derived kebab-case argument name.
func Name(name string) Meta { return Meta{set: attrName, name: name} }

// Short attaches a single-character flag alias.
func Short(r rune) Meta { return Meta{set: attrShort, short: r} }

// Help sets the help text shown for the argument.
func Help(text string) Meta { return Meta{set: attrHelp, help: text} }

// Placeholder sets the value placeholder shown next to an option in help
// output, e.g. "--region NAME".
func Placeholder(text string) Meta { return Meta{set: attrPlaceholder, placeholder: text} }

// Metavar sets the display name used for a positional argument in usage
// lines. Defaults to the upper-cased argument name.
func Metavar(name string) Meta { return Meta{set: attrMetavar, metavar: name} }

// Env names an environment variable consulted between the config-file
// layer and the command-line layer.
func Env(name string) Meta { return Meta{set: attrEnv, env: name} }

// Default overrides the field's seed value with the given literal, coerced
// with the same rules as a command-line value. An empty literal resets the
// field to its zero value and hides the default in help output.
func Default(literal string) Meta { return Meta{set: attrDefault, defval: literal} }

// Choices restricts the field to the given admissible values. Validation
// runs on final merged values, whatever layer supplied them.
func Choices(values ...string) Meta {
	m := Meta{set: attrChoices, choices: values}
	if len(values) == 0 {
		m.err = fmt.Errorf("choices must not be empty")
	}
	return m
}

// Positional turns the field into a positional argument. An optional
// arity controls how many values it consumes; when omitted, scalars take
// exactly one value and sequences take one or more.
func Positional(arity ...Arity) Meta {
	m := Meta{positional: true}
	switch len(arity) {
	case 0:
	case 1:
		m.set |= attrArity
		m.arity = arity[0]
		if !arity[0].valid() {
			m.err = fmt.Errorf("invalid arity %+v", arity[0])
		}
	default:
		m.err = fmt.Errorf("multiple arities given")
	}
	return m
}

// FileLoadable marks the field so that values of the form @path are
// replaced by the contents of the named file.
func FileLoadable() Meta { return Meta{fileLoadable: true} }

// Required makes the argument mandatory: some layer (file, environment,
// or command line) must supply a value.
func Required() Meta { return Meta{required: true} }

// Hidden keeps the argument out of help output. It still parses.
func Hidden() Meta { return Meta{hidden: true} }

// Excluded removes the field from the command-line interface regardless
// of include and exclude lists.
func Excluded() Meta { return Meta{excluded: true} }

// Included forces the field into the command-line interface regardless
// of include and exclude lists.
func Included() Meta { return Meta{included: true} }

// Combine folds several bags into one. Single-valued attributes take the
// last value given; marker attributes are set if any bag sets them.
// Contradictory bags (Included with Excluded, differing positional
// arities) poison the result, and Build reports the conflict.
func Combine(metas ...Meta) Meta {
	var out Meta
	for _, m := range metas {
		out = out.merge(m)
	}
	return out
}

func (m Meta) merge(o Meta) Meta {
	if o.set&attrName != 0 {
		m.name = o.name
	}
	if o.set&attrShort != 0 {
		m.short = o.short
	}
	if o.set&attrHelp != 0 {
		m.help = o.help
	}
	if o.set&attrPlaceholder != 0 {
		m.placeholder = o.placeholder
	}
	if o.set&attrMetavar != 0 {
		m.metavar = o.metavar
	}
	if o.set&attrEnv != 0 {
		m.env = o.env
	}
	if o.set&attrDefault != 0 {
		m.defval = o.defval
	}
	if o.set&attrChoices != 0 {
		m.choices = o.choices
	}
	if o.set&attrArity != 0 {
		if m.set&attrArity != 0 && m.arity != o.arity && m.err == nil {
			m.err = fmt.Errorf("conflicting arities %s and %s", m.arity, o.arity)
		}
		m.arity = o.arity
	}
	m.set |= o.set
	m.positional = m.positional || o.positional
	m.fileLoadable = m.fileLoadable || o.fileLoadable
	m.required = m.required || o.required
	m.hidden = m.hidden || o.hidden
	m.hideDefault = m.hideDefault || o.hideDefault
	m.included = m.included || o.included
	m.excluded = m.excluded || o.excluded
	if m.err == nil {
		m.err = o.err
	}
	if m.err == nil && m.included && m.excluded {
		m.err = fmt.Errorf("both included and excluded")
	}
	return m
}
