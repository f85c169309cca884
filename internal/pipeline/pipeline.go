package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aescanero/dago-node-transform/internal/eval/cel"
	"github.com/aescanero/dago-node-transform/internal/eval/template"
	"github.com/aescanero/dago-node-transform/internal/output"
	"github.com/aescanero/dago-node-transform/internal/record"
	"github.com/aescanero/dago-node-transform/internal/rewrite"
	"github.com/aescanero/dago-node-transform/internal/source"
	"go.uber.org/zap"
)

// ErrSingleRow is returned by TransformLine when the input does not hold
// exactly one data row
var ErrSingleRow = errors.New("expected a single data row")

// Stage names the step a line failed in
type Stage string

const (
	StageParse  Stage = "parse"
	StageFilter Stage = "filter"
	StageRender Stage = "render"
)

// Options holds settings shared by every run
type Options struct {
	RemoveNewlines  bool
	StrictTemplates bool

	// Stdout receives live output; defaults to os.Stdout
	Stdout io.Writer
}

// Result summarizes a completed run
type Result struct {
	// Output holds the rendered records of a buffered run
	Output   string `json:"output,omitempty"`
	Buffered bool   `json:"buffered"`

	Records  int `json:"records"`
	Skipped  int `json:"skipped"`
	Filtered int `json:"filtered"`
	Blank    int `json:"blank"`

	TemplateHash string        `json:"template_hash"`
	Layout       record.Layout `json:"layout,omitempty"`
}

// Pipeline runs transform requests against a shared template engine and a
// shared filter evaluator, so repeated requests reuse compiled work
type Pipeline struct {
	engine    *template.Engine
	evaluator *cel.Evaluator
	logger    *zap.Logger
	options   Options
}

// New creates a pipeline
func New(engine *template.Engine, logger *zap.Logger, options Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	return &Pipeline{
		engine:    engine,
		evaluator: cel.NewEvaluator(),
		logger:    logger,
		options:   options,
	}
}

// run holds everything compiled for one request
type run struct {
	tpl      *template.Template
	rewriter *rewrite.Rewriter
	tabular  *record.Tabular
	filter   *cel.Filter
	format   record.Format
}

// prepare performs every fallible setup step that does not need the input
func (p *Pipeline) prepare(req *Request) (*run, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := req.Template
	if body == "" {
		if p.options.StrictTemplates {
			text, err := template.LoadTemplateStrict(req.TemplatePath)
			if err != nil {
				return nil, err
			}
			body = text
		} else {
			body = template.LoadTemplate(req.TemplatePath)
			if body == "" {
				p.logger.Warn("template is empty or missing, records will render empty",
					zap.String("template_path", req.TemplatePath),
				)
			}
		}
	}

	tpl, err := p.engine.Compile(body)
	if err != nil {
		return nil, err
	}

	rewriter, err := rewrite.Compile(req.RegexMatch, req.RegexReplace)
	if err != nil {
		return nil, err
	}

	filter, err := p.evaluator.NewFilter(req.Where)
	if err != nil {
		return nil, err
	}

	r := &run{
		tpl:      tpl,
		rewriter: rewriter,
		filter:   filter,
		format:   req.Format,
	}

	if req.Format == record.FormatXSV {
		var layout record.Layout
		if !req.InferColumns {
			layout, err = record.ParseLayout(req.ColumnLayout)
			if err != nil {
				return nil, err
			}
		}
		r.tabular, err = record.NewTabular(req.Delimiter, layout)
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// TransformFile streams req.InputPath through the template. Buffered runs
// return the rendered text in Result.Output.
func (p *Pipeline) TransformFile(ctx context.Context, req Request) (*Result, error) {
	r, err := p.prepare(&req)
	if err != nil {
		return nil, err
	}

	lines, err := source.Open(req.InputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lines.Close() }()

	mode := req.Output
	if mode == "" {
		mode = output.ModeLive
	}
	sink := output.NewSinkTo(mode, p.options.Stdout)

	result := &Result{TemplateHash: r.tpl.Fingerprint()}

	logger := p.logger.With(
		zap.String("input_path", req.InputPath),
		zap.String("format", req.Format.String()),
		zap.String("template_hash", result.TemplateHash),
	)

	// the header line of an inferred layout is never treated as data
	awaitingLayout := req.InferColumns

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := lines.Text()

		if awaitingLayout {
			layout, err := r.tabular.InferLayout(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to infer columns from line %d: %w", lines.Number(), err)
			}
			logger.Debug("column layout inferred", zap.Strings("columns", layout))
			awaitingLayout = false
			continue
		}

		if strings.TrimSpace(raw) == "" {
			result.Blank++
			continue
		}

		text, keep, stage, err := p.transform(ctx, r, raw)
		if err != nil {
			result.Skipped++
			logger.Warn("skipping line",
				zap.Int("line_number", lines.Number()),
				zap.String("line", raw),
				zap.String("stage", string(stage)),
				zap.Error(err),
			)
			continue
		}
		if !keep {
			result.Filtered++
			continue
		}

		if err := sink.Emit(text); err != nil {
			return nil, err
		}
		result.Records++
	}

	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("%w: read failed: %w", source.ErrOpen, err)
	}

	if r.tabular != nil {
		result.Layout = r.tabular.Layout()
	}
	result.Output, result.Buffered = sink.Collect()

	logger.Debug("transform finished",
		zap.Int("records", result.Records),
		zap.Int("skipped", result.Skipped),
		zap.Int("filtered", result.Filtered),
	)

	return result, nil
}

// transform runs one raw line through rewrite, parse, filter and render.
// keep is false when the filter dropped the record.
func (p *Pipeline) transform(ctx context.Context, r *run, raw string) (string, bool, Stage, error) {
	line := r.rewriter.Apply(raw)

	var (
		rec interface{}
		err error
	)
	switch r.format {
	case record.FormatJSON:
		rec, err = record.ParseJSON(line)
	case record.FormatXSV:
		rec, err = r.tabular.Parse(line)
	}
	if err != nil {
		return "", false, StageParse, err
	}

	keep, err := r.filter.Match(ctx, rec)
	if err != nil {
		return "", false, StageFilter, err
	}
	if !keep {
		return "", false, "", nil
	}

	text, err := r.tpl.Render(rec, p.options.RemoveNewlines)
	if err != nil {
		return "", false, StageRender, err
	}
	return text, true, "", nil
}

// TransformRecord renders an already parsed record with the template at
// templatePath.
func (p *Pipeline) TransformRecord(templatePath string, rec interface{}) (string, error) {
	var body string
	if p.options.StrictTemplates {
		text, err := template.LoadTemplateStrict(templatePath)
		if err != nil {
			return "", err
		}
		body = text
	} else {
		body = template.LoadTemplate(templatePath)
	}
	return p.engine.Render(body, rec, p.options.RemoveNewlines)
}

// TransformLine renders inline input. With column inference the first line
// of input is the header and exactly one data row must follow; otherwise
// input is a single record. Parse failures are returned, not skipped.
func (p *Pipeline) TransformLine(ctx context.Context, req Request, input string) (string, error) {
	r, err := p.prepare(&req)
	if err != nil {
		return "", err
	}

	lines := source.NewLines(strings.NewReader(input))
	var rows []string
	for lines.Next() {
		if req.InferColumns && lines.Number() == 1 {
			if _, err := r.tabular.InferLayout(lines.Text()); err != nil {
				return "", err
			}
			continue
		}
		if strings.TrimSpace(lines.Text()) != "" {
			rows = append(rows, lines.Text())
		}
	}
	if err := lines.Err(); err != nil {
		return "", err
	}

	if r.format == record.FormatJSON {
		// a JSON document may legitimately span lines
		rows = []string{strings.Join(rows, "\n")}
	}
	if len(rows) != 1 {
		return "", fmt.Errorf("%w: got %d", ErrSingleRow, len(rows))
	}

	text, keep, stage, err := p.transform(ctx, r, rows[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", stage, err)
	}
	if !keep {
		return "", nil
	}
	return text, nil
}
