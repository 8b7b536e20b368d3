// Command flowchart edits workflow definition files from the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-flowchart"
)

type Globals struct {
	LogLevel string `help:"Log level." default:"warn" enum:"trace,debug,info,warn,error"`
	LogJSON  bool   `name:"log-json" help:"Log as JSON."`
	Catalog  string `type:"existingfile" help:"Translation catalog used for cloned labels."`
}

type cli struct {
	Globals

	Validate        validateCmd        `cmd:"" help:"Report reference problems in a definition."`
	CloneStep       cloneStepCmd       `cmd:"" name:"clone-step" help:"Clone a step with its outgoing transitions."`
	CloneTransition cloneTransitionCmd `cmd:"" name:"clone-transition" help:"Clone a transition and its definition."`
	Attribute       attributeCmd       `cmd:"" help:"Get or add the attribute bound to a property path."`
	FieldID         fieldIDCmd         `cmd:"" name:"field-id" help:"Translate between property paths and field ids."`
}

// app carries what every command needs once flags are parsed.
type app struct {
	out        io.Writer
	logger     flowchart.Logger
	translator flowchart.Translator
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var root cli
	a := &app{out: stdout}
	code := -1
	parser, err := kong.New(&root,
		kong.Name("flowchart"),
		kong.Description("Inspect and edit workflow flowchart definitions."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { code = c }),
		kong.Bind(a),
	)
	if err != nil {
		fmt.Fprintf(stderr, "flowchart: %v\n", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if code >= 0 {
		return code
	}
	if err != nil {
		fmt.Fprintf(stderr, "flowchart: %v\n", err)
		return 2
	}
	a.logger = newLogger(root.Globals, stderr)
	if a.translator, err = loadTranslator(root.Catalog); err != nil {
		fmt.Fprintf(stderr, "flowchart: %v\n", err)
		return 2
	}
	if err := ctx.Run(); err != nil {
		a.logger.Error("%s failed: %v", ctx.Command(), err)
		fmt.Fprintf(stderr, "flowchart: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(g Globals, w io.Writer) flowchart.Logger {
	if g.LogJSON {
		return flowchart.NewGlogLogger(glog.NewLogger(
			glog.WithWriter(w),
			glog.WithLoggerTypeJSON(),
			glog.WithLevel(g.LogLevel),
		))
	}
	return flowchart.NewGlogLogger(glog.NewLogger(
		glog.WithWriter(w),
		glog.WithLevel(g.LogLevel),
	))
}

func loadTranslator(path string) (flowchart.Translator, error) {
	if path == "" {
		return flowchart.IdentityTranslator, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return flowchart.LoadCatalog(data)
}
