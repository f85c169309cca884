// Package source provides lazy, single-pass access to the lines of an input
// file.
//
// Lines are handed out one at a time with their terminators stripped; both
// "\n" and "\r\n" end a line. Inputs with a .gz, .zst or .lz4 extension are
// decompressed on the fly and "-" reads standard input.
//
// Example usage:
//
//	lines, err := source.Open("customers.jsonl.gz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lines.Close()
//
//	for lines.Next() {
//	    fmt.Println(lines.Text())
//	}
//	if err := lines.Err(); err != nil {
//	    log.Fatal(err)
//	}
package source
