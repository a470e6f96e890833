package config

import (
	"fmt"
	"sort"
	"strings"
)

// Allowed maps config keys with a closed set of values to those values.
// Keys not listed accept any string.
var Allowed = map[string][]string{
	"default_output":  {"auto", "json", "plain", "rich"},
	"secrets_backend": {"auto", "file", "keyring"},
	"use_keyring":     {"false", "true"},
}

// Validate checks value against the allowed values for key.
// Empty values are always accepted and mean "use the default".
func Validate(key, value string) error {
	allowed, ok := Allowed[key]
	if !ok || value == "" {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %s. Valid values: %s", key, value, strings.Join(allowed, ", "))
}

// ValidValues returns a sorted copy of the allowed values for key.
func ValidValues(key string) []string {
	values := append([]string(nil), Allowed[key]...)
	sort.Strings(values)
	return values
}
