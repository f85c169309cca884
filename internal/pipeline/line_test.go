package pipeline

import (
	"context"
	"testing"

	"github.com/aescanero/dago-node-transform/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformLine(t *testing.T) {
	tests := map[string]struct {
		req   Request
		input string
		want  string
	}{
		"json": {
			req:   Request{Template: `{ "customerName": "{{customer.name}}" }`, Format: record.FormatJSON},
			input: `{"customer":{"name":"John"}}`,
			want:  `{ "customerName": "John" }`,
		},
		"pretty printed json": {
			req:   Request{Template: "{{customer.name}}", Format: record.FormatJSON},
			input: "{\n  \"customer\": {\"name\": \"John\"}\n}",
			want:  "John",
		},
		"json with rewrite": {
			req: Request{
				Template: "{{name}}", Format: record.FormatJSON,
				RegexMatch: `^(\w+)$`, RegexReplace: `{"name":"$1"}`,
			},
			input: "john",
			want:  "john",
		},
		"delimited with layout": {
			req: Request{
				Template: "{{last_name}}, {{first_name}} - {{customer_city}}", Format: record.FormatXSV,
				Delimiter: ",", ColumnLayout: "first_name, last_name, customer_city, hire_year",
			},
			input: `"john", "smith", "Davenport, FL", 2017`,
			want:  "smith, john - Davenport, FL",
		},
		"delimited inferred": {
			req: Request{
				Template: "{{first_name}} {{hire_year}}", Format: record.FormatXSV,
				Delimiter: ",", InferColumns: true,
			},
			input: "first_name, last_name, customer_city, hire_year\n" + `"john", "smith", "Davenport, FL", 2017`,
			want:  "john 2017",
		},
		"filtered out": {
			req:   Request{Template: "{{a}}", Format: record.FormatJSON, Where: "record.a > 5.0"},
			input: `{"a": 1}`,
			want:  "",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p, _, _ := newPipeline(Options{RemoveNewlines: true})
			got, err := p.TransformLine(context.Background(), tt.req, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformLineParseFailureIsReturned(t *testing.T) {
	p, _, _ := newPipeline(Options{})

	_, err := p.TransformLine(context.Background(), Request{Template: "x", Format: record.FormatJSON}, `{customer": {"name: "John"}}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrParse)

	_, err = p.TransformLine(context.Background(), Request{
		Template: "x", Format: record.FormatXSV, Delimiter: ",", ColumnLayout: "a, b",
	}, "1,2,3")
	assert.ErrorIs(t, err, record.ErrFieldCount)
}

func TestTransformLineSingleRow(t *testing.T) {
	p, _, _ := newPipeline(Options{})

	_, err := p.TransformLine(context.Background(), Request{
		Template: "{{a}}", Format: record.FormatXSV, Delimiter: ",", InferColumns: true,
	}, "a\n1\n2\n")
	assert.ErrorIs(t, err, ErrSingleRow)

	_, err = p.TransformLine(context.Background(), Request{
		Template: "{{a}}", Format: record.FormatXSV, Delimiter: ",", InferColumns: true,
	}, "a\n")
	assert.ErrorIs(t, err, ErrSingleRow)
}
