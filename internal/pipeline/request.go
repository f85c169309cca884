package pipeline

import (
	"errors"
	"fmt"

	"github.com/aescanero/dago-node-transform/internal/output"
	"github.com/aescanero/dago-node-transform/internal/record"
)

// ErrRequest is returned for inconsistent transform requests
var ErrRequest = errors.New("invalid transform request")

// Request describes one transform run
type Request struct {
	// TemplatePath is read from disk unless Template is set
	TemplatePath string `json:"template_path,omitempty"`
	Template     string `json:"template,omitempty"`

	InputPath string        `json:"input_path"`
	Format    record.Format `json:"format"`

	RegexMatch   string `json:"regex_match,omitempty"`
	RegexReplace string `json:"regex_replace,omitempty"`

	// Delimited input only
	Delimiter    string `json:"delimiter,omitempty"`
	ColumnLayout string `json:"column_layout,omitempty"`
	InferColumns bool   `json:"infer_columns,omitempty"`

	// Where is an optional CEL expression over "record"
	Where string `json:"where,omitempty"`

	Output output.Mode `json:"output,omitempty"`
}

// Validate checks the request before any file is opened
func (r *Request) Validate() error {
	if r.TemplatePath == "" && r.Template == "" {
		return fmt.Errorf("%w: a template path or inline template is required", ErrRequest)
	}

	switch r.Format {
	case record.FormatJSON:
		if r.ColumnLayout != "" || r.InferColumns {
			return fmt.Errorf("%w: column options only apply to delimited input", ErrRequest)
		}
	case record.FormatXSV:
		if r.Delimiter == "" {
			return fmt.Errorf("%w: delimited input requires a delimiter", ErrRequest)
		}
		if r.ColumnLayout == "" && !r.InferColumns {
			return fmt.Errorf("%w: either a column layout or column inference is required", ErrRequest)
		}
		if r.ColumnLayout != "" && r.InferColumns {
			return fmt.Errorf("%w: column layout and column inference are mutually exclusive", ErrRequest)
		}
	default:
		return fmt.Errorf("%w: %w: %q", ErrRequest, record.ErrUnknownFormat, r.Format)
	}

	if r.RegexReplace != "" && r.RegexMatch == "" {
		return fmt.Errorf("%w: a replacement pattern requires a match pattern", ErrRequest)
	}

	switch r.Output {
	case "", output.ModeLive, output.ModeBuffered:
	default:
		return fmt.Errorf("%w: unknown output mode %q", ErrRequest, r.Output)
	}

	return nil
}
