// Package schema type-checks component property bags.
//
// A Schema maps property names to a Type. Built-in types cover strings, whole numbers,
// floats, booleans, slices, enumerations and positive counts; Custom wraps any check.
// Properties are optional: Check only validates the keys that are present, while
// Validate also reports missing keys.
//
//	s := schema.Schema{
//	    "columns": schema.Count(),
//	    "layout":  schema.OneOf("absolute", "flex", "grid"),
//	}
//	if err := schema.Check(s, component.Properties); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // ...
//	    }
//	}
//
// ForKind returns the built-in schema for each component kind; LoadKinds merges overrides
// read from a JSON file.
package schema
