package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aescanero/dago-node-transform/internal/config"
	"github.com/aescanero/dago-node-transform/internal/eval/template"
	"github.com/aescanero/dago-node-transform/internal/output"
	"github.com/aescanero/dago-node-transform/internal/pipeline"
	"github.com/aescanero/dago-node-transform/internal/record"
	"github.com/aescanero/dago-node-transform/internal/source"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: transform <file|json|delimited> [flags]")

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	pipeline *pipeline.Pipeline
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(cfg *config.Config, logger *zap.Logger, stdout io.Writer) (*app, error) {
	engine := template.NewEngine(nil, logger)

	if cfg.HelpersFile != "" {
		helpers, err := template.LoadHelperFile(cfg.HelpersFile)
		if err != nil {
			return nil, err
		}
		if err := engine.RegisterHelpers(helpers); err != nil {
			return nil, err
		}
		logger.Debug("helpers loaded",
			zap.String("path", cfg.HelpersFile),
			zap.Strings("helpers", engine.HelperNames()),
		)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		pipeline: pipeline.New(engine, logger, pipeline.Options{
			RemoveNewlines:  cfg.RemoveNewlines,
			StrictTemplates: cfg.StrictTemplates,
			Stdout:          stdout,
		}),
		stdout: stdout,
		stderr: os.Stderr,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "file":
		return a.runFile(ctx, args[1:])
	case "json":
		return a.runInline(ctx, record.FormatJSON, args[1:])
	case "delimited", "xsv":
		return a.runInline(ctx, record.FormatXSV, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(a.stderr, errUsage)
		return flag.ErrHelp
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// requestFlags binds the flags shared by every command
type requestFlags struct {
	template     string
	input        string
	regexMatch   string
	regexReplace string
	delimiter    string
	columns      string
	infer        bool
	where        string
}

func (a *app) newFlagSet(name string, rf *requestFlags, tabular bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&rf.template, "t", "", "path to the Handlebars template")
	fs.StringVar(&rf.regexMatch, "m", "", "case-insensitive regex applied to each line before parsing")
	fs.StringVar(&rf.regexReplace, "r", "", "replacement for -m matches ($1, $<name> and $& are expanded)")
	fs.StringVar(&rf.where, "w", "", "CEL expression over record; false drops the record")
	if tabular {
		fs.StringVar(&rf.delimiter, "d", a.cfg.DefaultDelimiter, `field delimiter (\t for tab)`)
		fs.StringVar(&rf.columns, "c", "", "comma separated column layout")
		fs.BoolVar(&rf.infer, "n", false, "infer the column layout from the first line")
	}
	return fs
}

func (rf *requestFlags) request(format record.Format) pipeline.Request {
	req := pipeline.Request{
		TemplatePath: rf.template,
		InputPath:    rf.input,
		Format:       format,
		RegexMatch:   rf.regexMatch,
		RegexReplace: rf.regexReplace,
		ColumnLayout: rf.columns,
		InferColumns: rf.infer,
		Where:        rf.where,
	}
	if format == record.FormatXSV {
		req.Delimiter = unescapeDelimiter(rf.delimiter)
	}
	return req
}

func (a *app) runFile(ctx context.Context, args []string) error {
	var rf requestFlags
	fs := a.newFlagSet("file", &rf, true)
	fs.StringVar(&rf.input, "i", "", "input file, - for stdin (.gz, .zst and .lz4 are decompressed)")
	formatFlag := fs.String("f", "json", "input format: json or xsv")
	outputFlag := fs.String("o", "stdout", "output mode: stdout or buffer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := record.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	mode, err := output.ParseMode(*outputFlag)
	if err != nil {
		return err
	}
	if rf.input == "" {
		return fmt.Errorf("%w: -i is required", errUsage)
	}
	if err := checkPaths(rf.template, rf.input); err != nil {
		return err
	}

	req := rf.request(format)
	req.Output = mode

	started := time.Now()
	result, err := a.pipeline.TransformFile(ctx, req)
	if err != nil {
		return err
	}

	if result.Buffered {
		if _, err := io.WriteString(a.stdout, result.Output); err != nil {
			return err
		}
	}

	a.logger.Info("transform complete",
		zap.String("input_path", rf.input),
		zap.Int("records", result.Records),
		zap.Int("skipped", result.Skipped),
		zap.Int("filtered", result.Filtered),
		zap.Int("blank", result.Blank),
		zap.Duration("duration", time.Since(started)),
	)
	return nil
}

func (a *app) runInline(ctx context.Context, format record.Format, args []string) error {
	var rf requestFlags
	fs := a.newFlagSet(string(format), &rf, format == record.FormatXSV)
	fs.StringVar(&rf.input, "i", "", "inline input")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if rf.input == "" {
		return fmt.Errorf("%w: -i is required", errUsage)
	}
	if err := checkPaths(rf.template, ""); err != nil {
		return err
	}

	req := rf.request(format)
	req.InputPath = ""
	text, err := a.pipeline.TransformLine(ctx, req, rf.input)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, text)
	return err
}

// checkPaths fails fast on missing files before any work is done
func checkPaths(templatePath, inputPath string) error {
	if templatePath == "" {
		return fmt.Errorf("%w: -t is required", errUsage)
	}
	if _, err := os.Stat(templatePath); err != nil {
		return fmt.Errorf("template not found: %w", err)
	}
	if inputPath == "" || inputPath == source.Stdin {
		return nil
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input not found: %w", err)
	}
	return nil
}

func unescapeDelimiter(d string) string {
	return strings.NewReplacer(`\t`, "\t", `\|`, "|").Replace(d)
}

func isUsage(err error) bool {
	return errors.Is(err, errUsage)
}
