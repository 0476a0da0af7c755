package cli_test

import (
	"fmt"

	cli "github.com/bassmanitram/dataclass-cli"
)

func ExampleParseArgs() {
	type Config struct {
		Host  string `cli:"help=bind address"`
		Port  int    `cli:"default=8080"`
		Debug bool
	}

	cfg, err := cli.ParseArgs[Config]("server", nil, []string{"--host", "0.0.0.0", "--debug"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s:%d debug=%v\n", cfg.Host, cfg.Port, cfg.Debug)
	// Output: 0.0.0.0:8080 debug=true
}

func ExampleParseArgs_positionals() {
	type Convert struct {
		Input  string  `cli:"positional"`
		Output *string `cli:"positional"`
		Force  bool
	}

	cfg, err := cli.ParseArgs[Convert]("convert", nil, []string{"in.txt", "out.txt", "--force"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(cfg.Input, *cfg.Output, cfg.Force)
	// Output: in.txt out.txt true
}

func ExampleParseArgs_mapOverrides() {
	type Train struct {
		ModelConfig map[string]interface{}
	}

	cfg, err := cli.ParseArgs[Train]("train", nil, []string{
		"--mc", "layers:4",
		"--mc", "optimizer.lr:0.01",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(cfg.ModelConfig["layers"])
	optimizer := cfg.ModelConfig["optimizer"].(map[string]interface{})
	fmt.Println(optimizer["lr"])
	// Output:
	// 4
	// 0.01
}

func ExampleBuild() {
	type Config struct {
		Name string
	}

	b, err := cli.Build("app", &Config{Name: "default"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// one builder parses many argument vectors, each from a fresh copy
	// of the defaults
	r1 := b.ParseArgs([]string{"--name", "alpha"})
	r2 := b.ParseArgs(nil)
	fmt.Println(r1.Config.Name, r2.Config.Name)
	// Output: alpha default
}

func ExampleField() {
	type Config struct {
		Workers int
	}

	b, err := cli.Build[Config]("app", nil,
		cli.Field("Workers", cli.Short('w'), cli.Help("worker pool size")))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	r := b.ParseArgs([]string{"-w", "8"})
	fmt.Println(r.Config.Workers, r.Err)
	// Output: 8 <nil>
}
