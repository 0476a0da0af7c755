package cli

import "reflect"

// FilterFunc decides whether a field participates in the command-line
// interface. It is consulted only for fields that carry no explicit
// inclusion or exclusion marker and get no verdict from an Include or
// Exclude list.
type FilterFunc func(name string, field reflect.StructField) bool

// includeField applies the filtering precedence: field metadata first,
// then the include list (which is exhaustive when given), then the
// exclude list, then the filter predicate. Fields are included by
// default.
func (c *builder) includeField(name string, sf reflect.StructField, m Meta) bool {
	if m.excluded {
		return false
	}
	if m.included {
		return true
	}
	if c.includes != nil {
		return c.includes[name]
	}
	if c.excludes != nil && c.excludes[name] {
		return false
	}
	if c.filter != nil {
		return c.filter(name, sf)
	}
	return true
}
