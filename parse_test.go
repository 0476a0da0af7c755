package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanCfg struct {
	Name    string   `cli:"short=n"`
	Count   int      `cli:"short=c"`
	Debug   bool     `cli:"short=d"`
	Verbose bool     `cli:"short=v"`
	Tags    []string `cli:"short=t"`
	Extra   *[]string
	Params  map[string]interface{}
}

type posCfg struct {
	Src   string   `cli:"positional"`
	Out   *string  `cli:"positional"`
	Files []string `cli:"positional"`
	Debug bool
}

func scanArgs[T any](t *testing.T, args []string, opts ...Option) (*cmdline, error) {
	t.Helper()
	b, err := Build[T]("test", nil, opts...)
	require.NoError(t, err)
	cl := newCmdline()
	p := &parser{byName: b.core.byName, positionals: b.core.positionals, cl: cl}
	return cl, p.parse(args)
}

func TestScanLongFlag(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--name", "foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, cl.raw["Name"].tokens)
	assert.Equal(t, 1, cl.raw["Name"].count)
	assert.True(t, cl.explicit("Name"))
	assert.False(t, cl.explicit("Count"))
}

func TestScanLongFlagEquals(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--name=foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, cl.raw["Name"].tokens)
}

func TestScanShortFlag(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"-n", "foo", "-c", "3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, cl.raw["Name"].tokens)
	assert.Equal(t, []string{"3"}, cl.raw["Count"].tokens)
}

func TestScanShortGroup(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"-dv"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
	assert.Equal(t, []string{"true"}, cl.raw["Verbose"].tokens)
}

func TestScanShortGroupTrailingValue(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"-dn", "foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
	assert.Equal(t, []string{"foo"}, cl.raw["Name"].tokens)
}

func TestScanShortGroupEquals(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"-dn=foo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
	assert.Equal(t, []string{"foo"}, cl.raw["Name"].tokens)
}

func TestScanBoolForms(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)

	cl, err = scanArgs[scanCfg](t, []string{"--debug=false"})
	require.NoError(t, err)
	assert.Equal(t, []string{"false"}, cl.raw["Debug"].tokens)

	cl, err = scanArgs[scanCfg](t, []string{"--no-debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"false"}, cl.raw["Debug"].tokens)
}

func TestScanNegatedBoolRejectsValue(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"--no-debug=true"})
	require.Error(t, err)
	assert.Equal(t, "flag cannot have a value: no-debug", err.Error())
}

func TestScanUnknownFlag(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"--bogus"})
	require.Error(t, err)
	assert.Equal(t, "flag provided but not defined: bogus", err.Error())
}

func TestScanMissingValue(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"--name"})
	require.Error(t, err)
	assert.Equal(t, "flag needs an argument: name", err.Error())
}

func TestScanBadSyntax(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"---name"})
	require.Error(t, err)
	assert.Equal(t, "bad flag syntax: ---name", err.Error())
}

func TestScanScalarLastWins(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--name", "a", "--name", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, cl.raw["Name"].tokens)
	assert.Equal(t, 2, cl.raw["Name"].count)
}

func TestScanSequenceGreedy(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--tags", "x", "y", "--debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cl.raw["Tags"].tokens)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
}

func TestScanSequenceNegativeNumbers(t *testing.T) {
	// leading digits and dots do not look like flags
	cl, err := scanArgs[scanCfg](t, []string{"--tags", "-1", "-.5", "-", "--debug"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-1", "-.5", "-"}, cl.raw["Tags"].tokens)
}

func TestScanSequenceAppendsAcrossRepeats(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--tags", "a", "--tags", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cl.raw["Tags"].tokens)
	assert.Equal(t, 2, cl.raw["Tags"].count)
}

func TestScanSequenceEqualsForm(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--tags=x", "--tags=y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cl.raw["Tags"].tokens)
}

func TestScanSequenceNeedsValue(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"--tags", "--debug"})
	require.Error(t, err)
	assert.Equal(t, "flag needs an argument: tags", err.Error())
}

func TestScanSequenceEmptyRunAllowed(t *testing.T) {
	// Extra is optional, so an empty value run means "explicitly empty"
	cl, err := scanArgs[scanCfg](t, []string{"--extra", "--debug"})
	require.NoError(t, err)
	require.NotNil(t, cl.raw["Extra"])
	assert.Empty(t, cl.raw["Extra"].tokens)
	assert.Equal(t, 1, cl.raw["Extra"].count)
}

func TestScanHelp(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--help"})
	require.NoError(t, err)
	assert.True(t, cl.help)

	cl, err = scanArgs[scanCfg](t, []string{"-h"})
	require.NoError(t, err)
	assert.True(t, cl.help)
}

func TestScanConfigPath(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--config", "base.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "base.yaml", cl.configPath)
}

func TestScanMapFileAndOverrides(t *testing.T) {
	cl, err := scanArgs[scanCfg](t, []string{"--params", "conf.yaml", "-p", "model:x", "-p", "depth:3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"conf.yaml"}, cl.raw["Params"].tokens)
	assert.Equal(t, []string{"model:x", "depth:3"}, cl.overrides["Params"])
}

func TestScanPositionalsInterleaved(t *testing.T) {
	cl, err := scanArgs[posCfg](t, []string{"a", "--debug", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
	assert.Equal(t, []string{"a"}, cl.raw["Src"].tokens)
	assert.Equal(t, []string{"b"}, cl.raw["Out"].tokens)
	assert.Equal(t, []string{"c"}, cl.raw["Files"].tokens)
}

func TestScanPositionalLookahead(t *testing.T) {
	// With only two tokens the optional middle positional yields so the
	// trailing one-or-more positional stays satisfiable.
	cl, err := scanArgs[posCfg](t, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cl.raw["Src"].tokens)
	assert.Nil(t, cl.raw["Out"])
	assert.Equal(t, []string{"c"}, cl.raw["Files"].tokens)
}

func TestScanPositionalMissing(t *testing.T) {
	_, err := scanArgs[posCfg](t, []string{"a"})
	require.Error(t, err)
	assert.Equal(t, "missing required argument: FILES", err.Error())
}

func TestScanPositionalVariadicTakesRest(t *testing.T) {
	cl, err := scanArgs[posCfg](t, []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, cl.raw["Files"].tokens)
}

func TestScanTerminator(t *testing.T) {
	type Cfg struct {
		Args  []string `cli:"positional,nargs=*"`
		Debug bool
	}
	cl, err := scanArgs[Cfg](t, []string{"--debug", "--", "--not-a-flag", "-x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, cl.raw["Debug"].tokens)
	assert.Equal(t, []string{"--not-a-flag", "-x"}, cl.raw["Args"].tokens)
}

func TestScanUnrecognizedArguments(t *testing.T) {
	_, err := scanArgs[scanCfg](t, []string{"foo", "bar"})
	require.Error(t, err)
	assert.Equal(t, "unrecognized arguments: foo bar", err.Error())
}

func TestScanFixedArityPositional(t *testing.T) {
	type Cfg struct {
		Pair []string `cli:"positional,nargs=2"`
	}
	cl, err := scanArgs[Cfg](t, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cl.raw["Pair"].tokens)

	_, err = scanArgs[Cfg](t, []string{"a"})
	require.Error(t, err)
	assert.Equal(t, "missing required argument: PAIR", err.Error())

	_, err = scanArgs[Cfg](t, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, "unrecognized arguments: c", err.Error())
}

func TestLooksLikeFlag(t *testing.T) {
	for s, want := range map[string]bool{
		"--name": true,
		"-n":     true,
		"-1":     false,
		"-.5":    false,
		"-":      false,
		"value":  false,
		"":       false,
		"--":     true,
	} {
		assert.Equal(t, want, looksLikeFlag(s), "token %q", s)
	}
}
