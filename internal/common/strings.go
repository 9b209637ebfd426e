package common

import "strings"

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// JoinModule joins non-empty dotted path parts, e.g. ("generated", "orders") -> "generated.orders".
func JoinModule(parts ...string) string {
	var kept []string

	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, ".")
}

// ModuleBase returns the last element of a dotted module path.
// Returns empty string if modulePath is empty.
func ModuleBase(modulePath string) string {
	if modulePath == "" {
		return ""
	}

	if i := strings.LastIndexByte(modulePath, '.'); i >= 0 {
		return modulePath[i+1:]
	}

	return modulePath
}

// ModuleParent returns everything before the last element of a dotted module path.
func ModuleParent(modulePath string) string {
	if i := strings.LastIndexByte(modulePath, '.'); i >= 0 {
		return modulePath[:i]
	}

	return ""
}
