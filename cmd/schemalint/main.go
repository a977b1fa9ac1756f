package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/ndschema"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schemalint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaDir := fs.String("schemas", ".", "directory holding the schema fragments")
	dataPath := fs.String("data", "", "optional YAML data object to validate against the model")
	showBindings := fs.Bool("bindings", false, "print the storage binding table")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	fs.Usage = func() {
		writef(stderr, "Usage: %s [--schemas <dir>] [--data <object.yaml>] [--bindings] <model.schema.yaml>\n\n", os.Args[0])
		writeln(stderr, "Composes a schema model from its fragments and reports composition")
		writeln(stderr, "defects (unresolved references, cycles, conflicting declarations).")
		writeln(stderr)
		writeln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		writeln(stderr, "error: exactly one model schema argument is required")
		fs.Usage()
		return 2
	}
	modelName := remaining[0]

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()
	}

	reg, err := ndschema.NewRegistry(os.DirFS(*schemaDir),
		ndschema.NewLoadOptions().WithLogger(logger))
	if err != nil {
		writef(stderr, "error: %v\n", err)
		return 1
	}
	if err := reg.Init(); err != nil {
		writef(stderr, "error loading schemas: %v\n", err)
		return 1
	}

	model, err := reg.Model(modelName)
	if err != nil {
		writef(stderr, "error composing model: %v\n", err)
		return 1
	}
	writef(stdout, "%s composes (%d fields)\n", modelName, len(model.Fields()))

	if *showBindings {
		bindings := model.Bindings()
		for _, field := range bindings.Fields() {
			slot, _ := bindings.Slot(field)
			writef(stdout, "%s -> %s\n", field, slot)
		}
	}

	if *dataPath != "" {
		return validateData(model, *dataPath, stdout, stderr)
	}
	return 0
}

func validateData(model *ndschema.Model, path string, stdout, stderr io.Writer) int {
	data, err := os.ReadFile(path)
	if err != nil {
		writef(stderr, "error reading data object: %v\n", err)
		return 1
	}

	var obj ndschema.Object
	if err := yaml.Unmarshal(data, &obj); err != nil {
		writef(stderr, "error parsing data object %s: %v\n", path, err)
		return 1
	}

	_, report := model.Validate(obj)
	if !report.OK() {
		for i := range report {
			writeln(stderr, report[i].Error())
		}
		writef(stderr, "%s fails to validate\n", filepath.Base(path))
		return 1
	}

	writef(stdout, "%s validates\n", filepath.Base(path))
	return 0
}

func writef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

func writeln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}
