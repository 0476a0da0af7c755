package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"
)

var usageTemplateString = `{{.Name}}{{if .Flags}} [OPTIONS]{{end}}{{range .Args}} {{.Usage}}{{end}}`
var helpTemplateString = `
{{- if .Description -}}
{{.Description}}

{{end -}}
USAGE:
    {{.Usage}}

{{- if .Args}}

ARGUMENTS:
{{- range .Args}}
\t    \t{{.Metavar}}\t
{{- if .Help}}  {{.Help}}{{end}}
{{- end}}

{{- end}}

{{- if .Flags}}

OPTIONS:
{{- range .Flags}}
\t    \t
{{- if .ShortName}}-{{.ShortName}}, {{end}}--{{.Name}}
{{- if .HasArg}} <{{if .Placeholder}}{{.Placeholder}}{{else}}VALUE{{end}}>{{end}}\t
{{- if .Help}}  {{.Help}}{{end}}
{{- if and .HasArg .Default (not .Required)}}  (default: {{.Default}}){{end}}
{{- end}}

{{- end}}

`

var helpTemplate *template.Template

var usageTemplate *template.Template

func init() {
	helpTemplate = template.Must(
		template.New("help").Parse(helpTemplateString),
	)
	usageTemplate = template.Must(
		template.New("usage").Parse(usageTemplateString),
	)
}

type helpFlag struct {
	Name        string
	ShortName   string
	Placeholder string
	Help        string
	Default     string
	Required    bool
	HasArg      bool
}

type helpArg struct {
	Metavar string
	Usage   string
	Help    string
}

func (c *builder) helpFlags() []helpFlag {
	flags := []helpFlag{}
	for _, a := range c.args {
		if a.hidden {
			continue
		}
		flags = append(flags, helpFlag{
			Name:        a.long,
			ShortName:   a.short,
			Placeholder: a.placeholder,
			Help:        a.help,
			Default:     a.defStr,
			Required:    a.required,
			HasArg:      a.kind != kindHelp && !a.isBool,
		})
		if a.negLong != "" {
			flags = append(flags, helpFlag{
				Name: a.negLong,
				Help: fmt.Sprintf("Disable %s", a.help),
			})
		}
	}
	return flags
}

func (c *builder) helpArgs() []helpArg {
	args := []helpArg{}
	for _, a := range c.positionals {
		if a.hidden {
			continue
		}
		args = append(args, helpArg{
			Metavar: a.metavar,
			Usage:   a.usageMetavar(),
			Help:    a.help,
		})
	}
	return args
}

func (c *builder) usage() string {
	data := struct {
		Name  string
		Flags []helpFlag
		Args  []helpArg
	}{
		Name:  c.name,
		Flags: c.helpFlags(),
		Args:  c.helpArgs(),
	}
	sb := strings.Builder{}
	usageTemplate.Execute(&sb, data)
	return sb.String()
}

func (c *builder) writeHelp(w io.Writer) {
	data := struct {
		Usage       string
		Description string
		Flags       []helpFlag
		Args        []helpArg
	}{
		Usage:       c.usage(),
		Description: c.description,
		Flags:       c.helpFlags(),
		Args:        c.helpArgs(),
	}

	tw := newEscapedTabWriter(w)
	err := helpTemplate.Execute(tw, data)
	if err != nil {
		panic(err)
	}
	tw.Flush()
}

type escapedTabWriter struct {
	replacer  *strings.Replacer
	tabWriter *tabwriter.Writer
}

func newEscapedTabWriter(w io.Writer) escapedTabWriter {
	return escapedTabWriter{
		replacer:  strings.NewReplacer(`\t`, "\t", `\f`, "\f"),
		tabWriter: tabwriter.NewWriter(w, 0, 0, 0, ' ', 0),
	}
}

func (w escapedTabWriter) Write(p []byte) (int, error) {
	return w.replacer.WriteString(w.tabWriter, string(p))
}

func (w escapedTabWriter) Flush() error {
	return w.tabWriter.Flush()
}
