package schema

import "slices"

// Schema is a map of property names to their expected types.
type Schema map[string]Type

// Keys returns the property names in order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Check validates the properties of data that the schema names. Absent properties
// and properties the schema does not name are accepted. Failures are reported in
// key order.
func Check(schema Schema, data map[string]any) error {
	return validate(schema, data, false)
}

// Validate is Check with every schema property required.
func Validate(schema Schema, data map[string]any) error {
	return validate(schema, data, true)
}

func validate(schema Schema, data map[string]any, required bool) error {
	var errs []error
	for _, key := range schema.Keys() {
		value, exists := data[key]
		if !exists {
			if required {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if err := schema[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
