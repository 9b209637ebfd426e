package naming

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode"
)

// Key normalizes a name for conflict detection.
// The normalization pipeline:
// 1. Case-fold to lower.
// 2. Strip separators and punctuation.
func Key(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			result.WriteRune(unicode.ToLower(r))
		}
	}

	return result.String()
}

// Unique returns name, or name_N with the smallest N >= 1 whose Key is not
// in reserved. The returned name's key is added to reserved.
func Unique(name string, reserved map[string]bool) string {
	if !reserved[Key(name)] {
		reserved[Key(name)] = true
		return name
	}

	return NextFree(name, reserved)
}

// NextFree returns name_N with the smallest N >= 1 whose Key is not in
// reserved, and reserves it.
func NextFree(name string, reserved map[string]bool) string {
	for num := 1; ; num++ {
		candidate := name + "_" + strconv.Itoa(num)
		if !reserved[Key(candidate)] {
			reserved[Key(candidate)] = true
			return candidate
		}
	}
}

// SnakeCase converts an identifier to a lower snake_case module name.
// A leading digit is prefixed with "v", e.g. "2001" -> "v2001".
func SnakeCase(s string) string {
	tokens := TokenizeIdent(s)
	out := strings.Join(tokens, "_")

	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "v" + out
	}

	return out
}

// NamespaceSegments splits a namespace URI into module path segments.
// Examples:
//   - "http://www.example.com/schemas/order" -> ["com", "example", "schemas", "order"]
//   - "urn:acme:billing:v2" -> ["acme", "billing", "v2"]
func NamespaceSegments(ns string) []string {
	if ns == "" {
		return nil
	}

	var raw []string

	u, err := url.Parse(ns)

	switch {
	case err == nil && u.Host != "":
		hosts := strings.Split(u.Hostname(), ".")
		for i := len(hosts) - 1; i >= 0; i-- {
			if hosts[i] != "www" {
				raw = append(raw, hosts[i])
			}
		}

		p := strings.TrimSuffix(u.Path, path.Ext(u.Path))
		raw = append(raw, strings.Split(p, "/")...)
	case err == nil && u.Scheme == "urn":
		raw = strings.Split(u.Opaque, ":")
	default:
		raw = strings.FieldsFunc(ns, func(r rune) bool { return r == '/' || r == ':' })
	}

	var out []string

	for _, part := range raw {
		if seg := SnakeCase(part); seg != "" {
			out = append(out, seg)
		}
	}

	return out
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "getHTTPResponse" -> ["get", "HTTP", "Response"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		// Handle separators - start a new token
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i == 0 {
			current.WriteRune(r)

			continue
		}

		if shouldStartNewToken(runes, i) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true for every rune that is neither a letter nor a digit.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)
	isPrevSep := isSeparator(prevRune)

	// Transition from lowercase to uppercase: start new token
	// e.g., "orderID" -> split before 'I'
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// End of acronym: check if next character is lowercase
	// e.g., "XMLParser" -> "XML" + "Parser", split before 'P'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}

// TokenizeIdent splits an identifier into normalized lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}
