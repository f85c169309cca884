// Package pipeline turns an input file into rendered text, one record at a
// time.
//
// For every line of the input the pipeline optionally captures the column
// layout (first line only), rewrites the raw line with a regular expression,
// parses it as JSON or delimited text, filters it with a CEL expression,
// renders it through a Handlebars template and emits the result.
//
// Failures that happen before streaming starts (unreadable input, invalid
// pattern, template or filter, unusable header) abort the run and are
// returned to the caller. Failures on an individual line are logged with the
// raw line and the run continues with the next one.
//
// Example usage:
//
//	engine := template.NewEngine(nil, logger)
//	p := pipeline.New(engine, logger, pipeline.Options{RemoveNewlines: true})
//
//	result, err := p.TransformFile(ctx, pipeline.Request{
//	    TemplatePath: "templates/customer.json",
//	    InputPath:    "data/customers.csv",
//	    Format:       record.FormatXSV,
//	    Delimiter:    ",",
//	    InferColumns: true,
//	    Output:       output.ModeBuffered,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Output)
package pipeline
