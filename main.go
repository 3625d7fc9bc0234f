package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jflat/internal/config"
	"github.com/mcncl/jflat/internal/document"
	"github.com/mcncl/jflat/internal/errors"
	"github.com/mcncl/jflat/internal/formatter"
)

// FlatCmd prints the flat map
type FlatCmd struct {
	Separator      string `help:"Text between each path and its value (default \"=\")." short:"s"`
	EOLReplacement string `help:"Replace line feeds inside values with this text." name:"eol-replacement"`
}

// CSVCmd denormalizes the document into CSV
type CSVCmd struct {
	Entry     string   `help:"Entry path whose array elements become rows, e.g. /controllers/disks." short:"e"`
	Property  []string `help:"Property path relative to each row, repeatable. '.' is the row itself, '../x' a sibling of the enclosing array." short:"p" sep:"none"`
	Separator string   `help:"Column separator (default \";\")." short:"s"`
	View      string   `help:"Named view from the config file supplying entry, properties and separator."`
	CRLF      bool     `help:"Terminate CSV lines with CRLF." name:"crlf"`
}

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Config      string `help:"Path to config file. If not specified, .jflat.yml is searched in the current and parent directories." short:"c" type:"path"`
	RemoveNodes bool   `help:"Leave out the {object} and {array} entries of containers." short:"r"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`

	Flat FlatCmd `cmd:"" default:"1" help:"Print one path=value line per JSON node (default)."`
	CSV  CSVCmd  `cmd:"" name:"csv" help:"Turn the arrays along an entry path into CSV rows."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jflat"),
		kong.Description("Flatten JSON into path=value lines and denormalize it into CSV"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Usage has already been shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("jflat version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx, kctx.Command())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jflat --help\n")
		os.Exit(1)
	}
}

// newContext builds the logger and merges the config file with the flags
func newContext() (*Context, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if CLI.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.CLIOverrides{
		RemoveNodes:   CLI.RemoveNodes,
		FlatSeparator: CLI.Flat.Separator,
		CSVSeparator:  CLI.CSV.Separator,
		CRLF:          CLI.CSV.CRLF,
	}
	if CLI.Flat.EOLReplacement != "" {
		overrides.EOLReplacement = &CLI.Flat.EOLReplacement
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to load config '%s'", configPath), err)
	}
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath, "views", len(cfg.Views))
	}

	return &Context{Debug: CLI.Debug, Config: cfg, Logger: logger}, nil
}

// run executes the selected command
func run(ctx *Context, command string) error {
	switch command {
	case "", "flat":
		return runFlat(ctx)
	case "csv":
		return runCSV(ctx)
	default:
		return errors.NewArgumentError(fmt.Sprintf("unknown command '%s'", command))
	}
}

// runFlat parses the input and writes the flat dump
func runFlat(ctx *Context) error {
	doc, err := parseInput(ctx)
	if err != nil {
		return err
	}

	opts := formatter.DumpOptions{Separator: ctx.Config.Flat.Separator}
	if ctx.Config.Flat.EOLReplacement != nil {
		opts.ReplaceEOL = true
		opts.EOLReplacement = *ctx.Config.Flat.EOLReplacement
	}

	tree, err := doc.FlatTree(opts)
	if err != nil {
		return err
	}
	return writeOutput(tree)
}

// runCSV parses the input and writes the denormalized CSV
func runCSV(ctx *Context) error {
	query, err := buildQuery(ctx.Config)
	if err != nil {
		return err
	}

	doc, err := parseInput(ctx)
	if err != nil {
		return err
	}

	csv, err := doc.Denormalize(query)
	if err != nil {
		return err
	}

	ending, err := ctx.Config.LineEnding()
	if err != nil {
		return err
	}
	return writeOutput(formatter.NewFormatter().ConvertLineEndings(csv, ending))
}

// buildQuery combines the csv flags with the selected view. Flags win over
// the view, and the view wins over the csv section of the config.
func buildQuery(cfg *config.Config) (document.Query, error) {
	var query document.Query
	if CLI.CSV.View != "" {
		view, err := cfg.View(CLI.CSV.View)
		if err != nil {
			return document.Query{}, err
		}
		query = view.Query()
	}

	if CLI.CSV.Entry != "" {
		entry := CLI.CSV.Entry
		query.Entry = &entry
	}
	if len(CLI.CSV.Property) > 0 {
		query.Properties = make([]*string, len(CLI.CSV.Property))
		for i := range CLI.CSV.Property {
			query.Properties[i] = &CLI.CSV.Property[i]
		}
	}
	if CLI.CSV.Separator != "" || query.Separator == nil {
		separator := cfg.CSV.Separator
		query.Separator = &separator
	}

	if query.Entry == nil {
		return document.Query{}, errors.NewArgumentError("an entry path is required: use --entry or --view")
	}
	return query, nil
}

// parseInput reads JSON from file or stdin
func parseInput(ctx *Context) (*document.Document, error) {
	opts := []document.Option{document.WithLogger(ctx.Logger)}
	if ctx.Config.RemoveNodes {
		opts = append(opts, document.WithoutContainerMarkers())
	}

	if CLI.Input != "" {
		if info, err := os.Stat(CLI.Input); err == nil && info.Mode().IsRegular() && info.Size() == 0 {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' is empty", CLI.Input), errors.ErrFileEmpty)
		}
		return document.ParseFile(CLI.Input, opts...)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return nil, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(opts)
		}
		return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return nil, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return document.ParseString(string(jsonData), opts...)
}

// writeOutput writes text to file or stdout
func writeOutput(text string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(text), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Print(text)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(opts []document.Option) (*document.Document, error) {
	fmt.Fprintln(os.Stderr, "jflat Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if len(jsonData) == 0 {
		return nil, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return document.ParseString(jsonData, opts...)
}
