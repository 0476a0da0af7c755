/*
Package cli builds command-line interfaces from config structs: every
exported field becomes a flag or positional argument according to its
type, and parsed values merge with config files and environment
variables in a fixed precedence order.

Example

Server program:

		package main

		import (
			"fmt"

			cli "github.com/bassmanitram/dataclass-cli"
		)

		type Server struct {
			Host    string            `cli:"help=address to bind"`
			Port    int               `cli:"short=p,env=PORT,help=port to listen on"`
			Debug   bool              `cli:"help=debug output"`
			Tags    []string          `cli:"help=tags to advertise"`
			Tuning  map[string]any    `cli:"help=tuning parameters"`
			DataDir string            `cli:"positional,metavar=DATA_DIR,help=data directory"`
		}

		func (s *Server) Run() error {
			fmt.Printf("listening on %s:%d\n", s.Host, s.Port)
			return nil
		}

		func main() {
			cli.New("server", &Server{Host: "localhost", Port: 8080}).
				Parse().
				RunFatal()
		}

Usage:

		$ server --help
		USAGE:
		    server [OPTIONS] DATA_DIR

		ARGUMENTS:
		    DATA_DIR  data directory

		OPTIONS:
		    -h, --help            show usage help
		    --config <FILE>       base configuration file (JSON, YAML, TOML, or HCL)
		    --host <VALUE>        address to bind  (default: localhost)
		    -p, --port <VALUE>    port to listen on  (default: 8080)
		    --debug               debug output
		    --no-debug            Disable debug output
		    --tags <VALUE ...>    tags to advertise
		    --tuning <FILE>       tuning parameters
		    --t <KEY:VALUE>       override a tuning value (KEY[.PATH]:VALUE)

		$ PORT=9000 server ./data --debug --tags a b
		listening on localhost:9000

Argument Synthesis

Field types decide argument shape. Booleans become paired --name and
--no-name flags that take no value. Slices become options that consume
every following token up to the next flag, appending across repeats.
Maps of string keys become two options: the field's own flag takes a
nested config file path, and a companion flag named after the field's
initials applies KEY:VALUE overrides, where the value is decoded as
JSON when it parses as JSON and kept as a string otherwise. Everything
else takes a single value. Fields marked positional consume bare
tokens instead; arity metadata (?, *, +, or a count) controls how
many, with at most one unbounded positional allowed, in last position.

Merge Order

Each parse starts from a deep copy of the defaults struct, then applies
layers in increasing precedence:

		defaults < --config file < environment < flags and positionals

Map fields merge last: the nested config file's keys shallow-merge over
whatever earlier layers left in the map, then each override applies in
command-line order. Choices restrictions are checked on final values,
whatever layer supplied them, and a config type may implement
Validate() error to check cross-field invariants after merging.

Struct Tags

Metadata can be given as struct tags of the form `cli:"key1,key2=value"`:

		struct MyConfig {
			F1  string `cli:"-"`                             // skipped entirely
			F2  string `cli:"required"`                      // some layer must set it
			F3  string `cli:"help=the value for F3"`         // custom help text
			F4  string `cli:"help='to help, or not?'"`       // help text with a comma
			F5  string `cli:"placeholder=<D>"`               // help placeholder
			F6  string `cli:"name=eee"`                      // explicit flag name
			F7  string `cli:"short=f"`                       // short alias (1 rune)
			F8  string `cli:"env=MY_F8_VALUE"`               // environment fallback
			F9  string `cli:"default=abc"`                   // seed value literal
			F10 string `cli:"choices='red,green,blue'"`      // admissible values
			F11 string `cli:"fileload"`                      // @path reads file contents
			F12 string `cli:"positional,nargs=?"`            // optional positional
		}

The same metadata can be attached programmatically with the Field
option and the Meta constructors, which win over tags:

		cli.Build("app", &cfg,
			cli.Field("Region", cli.Short('r'), cli.Choices("eu", "us")),
			cli.Exclude("Internal"),
		)

Field Types and Value Parsing

Strings are set directly from input. Booleans, integers, unsigned
integers, and floats are parsed with strconv, including named types
like `type Port int`. time.Duration fields are parsed using
time.ParseDuration. For a pointer field with a nil default, a new inner
value is constructed when some layer supplies a value, so optional
fields stay nil when nothing sets them.

All other types are parsed using the first method below that is
implemented with the type itself or a pointer to the type as the
receiver:

		Set(s string) error                 // similar to flag.Value
		UnmarshalText(text []byte) error    // encoding.TextUnmarshaler
		UnmarshalBinary(data []byte) error  // encoding.BinaryUnmarshaler

Many standard library types already implement one of these; for
example, time.Time parses RFC 3339 timestamps via
encoding.TextUnmarshaler. String values coming from config files run
through the same methods, so a YAML "15m" fills a time.Duration field.
*/
package cli
