// Package cel provides a CEL (Common Expression Language) filter for records.
//
// CEL is a non-Turing complete expression language that provides fast, safe
// evaluation of conditions. A filter expression sees the parsed record as the
// variable "record" and must evaluate to a boolean; records for which it is
// false are dropped before rendering.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//	filter, err := evaluator.NewFilter(`record.status == "active" && double(record.score) > 0.5`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	keep, err := filter.Match(ctx, map[string]interface{}{
//	    "status": "active",
//	    "score":  "0.95",
//	})
//	// keep == true
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Arithmetic: +, -, *, /, %
//   - List operations: in, size
//   - Map access: record.field, record["field"], has(record.field)
package cel
