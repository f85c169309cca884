// Package record turns raw input lines into records that can be bound to a
// template.
//
// Two formats are supported and the set is closed:
//   - FormatJSON: every line is one standalone JSON value (not an array of
//     objects spread over lines).
//   - FormatXSV: every line is a delimited row zipped against a Layout, with
//     quote-aware splitting so that "Davenport, FL" stays one field.
//
// Example usage:
//
//	layout, _ := record.ParseLayout("first_name, last_name, customer_city, hire_year")
//	parser, _ := record.NewTabular(",", layout)
//
//	rec, err := parser.Parse(`"john", "smith", "Davenport, FL", 2017`)
//	// rec["customer_city"] == "Davenport, FL"
//	// rec["hire_year"] == "2017"
package record
