// Command markup escapes, unescapes and formats HTML/XML markup.
//
// Usage:
//
//	markup escape [--no-quotes] [text...]
//	markup unescape [markup...]
//	markup strip-entities [--keep-xml] [markup...]
//	markup strip-tags [markup...]
//	markup join [--sep <markup>] [--no-quotes] [item...]
//	markup format <template> [arg...] [--key name=value...]
//	markup repr [markup...]
//	markup version
//
// Text is read from the arguments, or from stdin when none are given.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/safemarkup/core/errors"
	"github.com/FocuswithJustin/safemarkup/core/markup"
	"github.com/FocuswithJustin/safemarkup/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for markup.
type CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level (${enum})"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log format (${enum})"`

	Escape        EscapeCmd        `cmd:"" help:"Escape text for inclusion in HTML/XML"`
	Unescape      UnescapeCmd      `cmd:"" help:"Reverse escaping and print plain text"`
	StripEntities StripEntitiesCmd `cmd:"" help:"Replace character and entity references with their characters"`
	StripTags     StripTagsCmd     `cmd:"" help:"Remove tags and comments"`
	Join          JoinCmd          `cmd:"" help:"Escape items and join them with a markup separator"`
	Format        FormatCmd        `cmd:"" help:"Interpolate escaped values into a percent-style markup template"`
	Repr          ReprCmd          `cmd:"" help:"Print the debugging representation of markup"`
	Version       VersionCmd       `cmd:"" help:"Print version information"`
}

// env carries the I/O and context bound to every command's Run method.
type env struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
}

// input returns args joined by spaces, or all of stdin without its final
// line break when args is empty.
func (e *env) input(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(e.stdin)
	if err != nil {
		return "", errors.Wrap(err, "reading stdin")
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// lines returns args, or the lines of stdin when args is empty.
func (e *env) lines(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	scanner := bufio.NewScanner(e.stdin)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading stdin")
	}
	return out, nil
}

// emit writes the result of op on in to stdout.
func (e *env) emit(op, in, out string) error {
	logging.Operation(e.ctx, op, len(in), len(out))
	_, err := fmt.Fprintln(e.stdout, out)
	return err
}

// EscapeCmd escapes plain text.
type EscapeCmd struct {
	NoQuotes bool     `name:"no-quotes" help:"Leave double quotes unescaped"`
	Text     []string `arg:"" optional:"" help:"Text to escape (default: stdin)"`
}

func (c *EscapeCmd) Run(e *env) error {
	in, err := e.input(c.Text)
	if err != nil {
		return err
	}
	return e.emit("escape", in, markup.EscapeString(in, !c.NoQuotes).String())
}

// UnescapeCmd turns markup back into plain text.
type UnescapeCmd struct {
	Markup []string `arg:"" optional:"" help:"Markup to unescape (default: stdin)"`
}

func (c *UnescapeCmd) Run(e *env) error {
	in, err := e.input(c.Markup)
	if err != nil {
		return err
	}
	return e.emit("unescape", in, markup.Markup(in).Unescape())
}

// StripEntitiesCmd decodes character and entity references.
type StripEntitiesCmd struct {
	KeepXML bool     `name:"keep-xml" help:"Keep the five XML entities (&amp; &apos; &gt; &lt; &quot;)"`
	Markup  []string `arg:"" optional:"" help:"Markup to process (default: stdin)"`
}

func (c *StripEntitiesCmd) Run(e *env) error {
	in, err := e.input(c.Markup)
	if err != nil {
		return err
	}
	return e.emit("strip-entities", in, markup.Markup(in).StripEntities(c.KeepXML).String())
}

// StripTagsCmd removes tags and comments.
type StripTagsCmd struct {
	Markup []string `arg:"" optional:"" help:"Markup to process (default: stdin)"`
}

func (c *StripTagsCmd) Run(e *env) error {
	in, err := e.input(c.Markup)
	if err != nil {
		return err
	}
	return e.emit("strip-tags", in, markup.Markup(in).StripTags().String())
}

// JoinCmd escapes each item and joins them.
type JoinCmd struct {
	Sep      string   `name:"sep" short:"s" default:", " help:"Separator, used as trusted markup"`
	NoQuotes bool     `name:"no-quotes" help:"Leave double quotes in items unescaped"`
	Items    []string `arg:"" optional:"" help:"Items to join (default: stdin lines)"`
}

func (c *JoinCmd) Run(e *env) error {
	items, err := e.lines(c.Items)
	if err != nil {
		return err
	}
	out, err := markup.Markup(c.Sep).Join(items, !c.NoQuotes)
	if err != nil {
		return err
	}
	return e.emit("join", strings.Join(items, ""), out.String())
}

// FormatCmd interpolates escaped values into a trusted template.
type FormatCmd struct {
	Template string            `arg:"" help:"Percent-style markup template, e.g. '<b>%s</b>'"`
	Args     []string          `arg:"" optional:"" help:"Positional values"`
	Key      map[string]string `name:"key" short:"k" help:"Named value for %(name)s directives (name=value)"`
}

func (c *FormatCmd) Run(e *env) error {
	if len(c.Key) > 0 && len(c.Args) > 0 {
		return errors.NewValidation("key", "named values cannot be combined with positional values")
	}
	var args []any
	if len(c.Key) > 0 {
		args = []any{c.Key}
	} else {
		args = make([]any, len(c.Args))
		for i, a := range c.Args {
			args[i] = a
		}
	}
	out, err := markup.Markup(c.Template).Format(args...)
	if err != nil {
		return err
	}
	return e.emit("format", c.Template, out.String())
}

// ReprCmd prints Markup.Repr of its input.
type ReprCmd struct {
	Markup []string `arg:"" optional:"" help:"Markup to show (default: stdin)"`
}

func (c *ReprCmd) Run(e *env) error {
	in, err := e.input(c.Markup)
	if err != nil {
		return err
	}
	return e.emit("repr", in, markup.Markup(in).Repr())
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(e *env) error {
	_, err := fmt.Fprintf(e.stdout, "markup version %s\n", version)
	return err
}

// run parses args and executes the selected command. It returns the
// process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cli CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("markup"),
		kong.Description("Escape and manipulate HTML/XML markup"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			if exitCode < 0 {
				exitCode = code
			}
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "markup: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		parser.FatalIfErrorf(err)
		return exitCode
	}

	if err := configureLogging(stderr, cli.LogLevel, cli.LogFormat); err != nil {
		fmt.Fprintf(stderr, "markup: error: %v\n", err)
		return 1
	}

	command := kctx.Selected().Name
	logging.Debug("parsed command line", "command", command, "args", len(args))
	ctx := logging.WithCommand(context.Background(), command)
	if err := kctx.Run(&env{ctx: ctx, stdin: stdin, stdout: stdout}); err != nil {
		logging.OperationError(ctx, command, err)
		fmt.Fprintf(stderr, "markup: error: %v\n", err)
		return 1
	}
	return 0
}

// configureLogging points the global logger at w.
func configureLogging(w io.Writer, levelName, formatName string) error {
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return errors.Wrap(err, "--log-level")
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return errors.Wrap(err, "--log-format")
	}
	logging.InitLoggerTo(w, level, format)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
