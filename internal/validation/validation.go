package validation

import "strings"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// NotIn flags values from a disallowed set (e.g. the "none" select placeholder).
func NotIn(field, value string, v Violations, disallowed ...string) {
	for _, d := range disallowed {
		if value == d {
			v[field] = "not_allowed"
			return
		}
	}
}
