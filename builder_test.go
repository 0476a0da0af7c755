package cli

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRejectsNonStruct(t *testing.T) {
	_, err := Build[int]("app", nil)
	require.Error(t, err)
	var derr DefinitionError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "int: config type must be a struct", err.Error())
}

func TestNewPanicsOnDefinitionError(t *testing.T) {
	assert.PanicsWithValue(t, "cli: int: config type must be a struct", func() {
		New[int]("app", nil)
	})
}

func TestBuildDefaultLiteral(t *testing.T) {
	type Cfg struct {
		Count   int           `cli:"default=5"`
		Timeout time.Duration `cli:"default=30s"`
	}
	cfg, err := ParseArgs[Cfg]("app", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Count)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestBuildDefaultLiteralWinsOverSeed(t *testing.T) {
	type Cfg struct {
		Count int `cli:"default=5"`
	}
	cfg, err := ParseArgs("app", &Cfg{Count: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Count)
}

func TestBuildEmptyDefaultResetsSeed(t *testing.T) {
	type Cfg struct {
		Name string `cli:"default="`
	}
	cfg, err := ParseArgs("app", &Cfg{Name: "seeded"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Name)
}

func TestBuildBadDefaultLiteral(t *testing.T) {
	type Cfg struct {
		Count int `cli:"default=abc"`
	}
	_, err := Build[Cfg]("app", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid default "abc"`)
}

func TestBuildBadBoolDefault(t *testing.T) {
	type Cfg struct {
		Debug bool `cli:"default=yes"`
	}
	_, err := Build[Cfg]("app", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a boolean")
}

func TestBuildDefaultMustSatisfyChoices(t *testing.T) {
	type Cfg struct {
		Format string `cli:"default=xml,choices='text,json'"`
	}
	_, err := Build[Cfg]("app", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `default "xml" is not one of the choices (text, json)`)

	type OK struct {
		Format string `cli:"default=json,choices='text,json'"`
	}
	_, err = Build[OK]("app", nil)
	assert.NoError(t, err)
}

func TestBuildSeedMustSatisfyChoices(t *testing.T) {
	type Cfg struct {
		Format string `cli:"choices='text,json'"`
	}
	_, err := Build("app", &Cfg{Format: "xml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not one of the choices")
}

func TestBuildRejectsUnsupportedType(t *testing.T) {
	type Cfg struct {
		Fn func()
	}
	_, err := Build[Cfg]("app", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no setter for type func()")
}

func TestBuildRejectsUnsupportedElemType(t *testing.T) {
	type Cfg struct {
		Chans []chan int
	}
	_, err := Build[Cfg]("app", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no setter")
}

func TestConfigFlagRename(t *testing.T) {
	type Cfg struct {
		Name string
	}
	path := writeTempFile(t, "conf.yaml", "name: from-file\n")

	cfg, err := ParseArgs[Cfg]("app", nil, []string{"--config-file", path}, WithConfigFlag("config-file"))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Name)

	_, err = ParseArgs[Cfg]("app", nil, []string{"--config", path}, WithConfigFlag("config-file"))
	require.Error(t, err)
	assert.Equal(t, "flag provided but not defined: config", err.Error())
}

func TestConfigFlagDisabled(t *testing.T) {
	type Cfg struct {
		Name string
	}
	_, err := ParseArgs[Cfg]("app", nil, []string{"--config", "x.yaml"}, WithConfigFlag(""))
	require.Error(t, err)
	assert.Equal(t, "flag provided but not defined: config", err.Error())
}

type funcSetter func(s string) error

func (f funcSetter) Set(s string) error { return f(s) }

func TestWithSetterOverridesDefaultRules(t *testing.T) {
	type Cfg struct {
		Start time.Time
	}
	dateSetter := WithSetter(func(i interface{}) Setter {
		v, ok := i.(*time.Time)
		if !ok {
			return nil
		}
		return funcSetter(func(s string) error {
			parsed, err := time.Parse("2006-01-02", s)
			if err != nil {
				return err
			}
			*v = parsed
			return nil
		})
	})

	cfg, err := ParseArgs[Cfg]("app", nil, []string{"--start", "2024-03-01"}, dateSetter)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), cfg.Start)

	// without the custom setter the same value fails RFC 3339 parsing
	_, err = ParseArgs[Cfg]("app", nil, []string{"--start", "2024-03-01"})
	require.Error(t, err)
}

// hexID parses itself from hex notation.
type hexID int

func (h *hexID) Set(s string) error {
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return err
	}
	*h = hexID(n)
	return nil
}

func TestSetterInterface(t *testing.T) {
	type Cfg struct {
		ID hexID
	}
	cfg, err := ParseArgs[Cfg]("app", nil, []string{"--id", "ff"})
	require.NoError(t, err)
	assert.Equal(t, hexID(255), cfg.ID)
}

func TestNamedPrimitiveTypes(t *testing.T) {
	type Port int
	type Cfg struct {
		Port Port
	}
	cfg, err := ParseArgs[Cfg]("app", nil, []string{"--port", "8080"})
	require.NoError(t, err)
	assert.Equal(t, Port(8080), cfg.Port)
}

func TestRenderDefaults(t *testing.T) {
	type Cfg struct {
		Name   string
		Count  int    `cli:"default=5"`
		Secret string `cli:"nodefault"`
		Empty  string
	}
	b, err := Build("app", &Cfg{Name: "svc", Secret: "hunter2"})
	require.NoError(t, err)

	assert.Equal(t, "svc", b.core.argOf["Name"].defStr)
	assert.Equal(t, "5", b.core.argOf["Count"].defStr)
	assert.Equal(t, "", b.core.argOf["Secret"].defStr)
	assert.Equal(t, "", b.core.argOf["Empty"].defStr)
}

func TestBuilderReuseAcrossArgVectors(t *testing.T) {
	type Cfg struct {
		Name string
		Tags []string
	}
	b, err := Build("app", &Cfg{Name: "base", Tags: []string{"t"}})
	require.NoError(t, err)

	r1 := b.ParseArgs([]string{"--name", "one"})
	r2 := b.ParseArgs([]string{"--tags", "x", "y"})
	require.NoError(t, r1.Err)
	require.NoError(t, r2.Err)

	assert.Equal(t, "one", r1.Config.Name)
	assert.Equal(t, []string{"t"}, r1.Config.Tags)
	assert.Equal(t, "base", r2.Config.Name)
	assert.Equal(t, []string{"x", "y"}, r2.Config.Tags)
}
