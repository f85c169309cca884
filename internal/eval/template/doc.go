// Package template provides a Handlebars template engine for rendering
// records.
//
// Compiled templates are cached by their exact source text, so the same
// template applied to tens of thousands of records is parsed once. The cache
// is an explicit Cache value owned by the Engine; MemoryCache is the default.
//
// Example usage:
//
//	engine := template.NewEngine(nil, logger)
//
//	data := map[string]interface{}{
//	    "customer": map[string]interface{}{
//	        "name": "John",
//	        "tier": "gold",
//	    },
//	}
//
//	tpl, err := engine.Compile("{ \"customerName\": \"{{customer.name}}\",\n \"tier\": \"{{uppercase customer.tier}}\" }")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := tpl.Render(data, true)
//	// Output: { "customerName": "John", "tier": "GOLD" }
//
// Built-in helpers:
//   - uppercase, lowercase, trim - String case and whitespace
//   - yell, whisper - Aliases of uppercase and lowercase
//   - default - Return default value if first arg is empty
//   - required - Fail the render if the value is missing or empty
//   - eq, ne - Equality comparison
//   - gt, lt - Numeric comparison
//   - contains - Check if string contains substring
//   - join - Join array elements with separator
//   - len - Get length of array/string/map
//   - json - Encode a value as JSON
//   - sanitize - Strip unsafe markup from a string
//
// Extra helpers can be registered with RegisterHelper, or declared in a YAML
// helper file as chains of string helpers, before the first template is
// compiled:
//
//	helpers:
//	  shout: [trim, uppercase]
//	  clean: [sanitize, trim]
package template
