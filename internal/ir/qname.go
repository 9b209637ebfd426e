package ir

import (
	"fmt"
	"strings"
)

// QName is a qualified name with namespace and local part.
type QName struct {
	Namespace string
	Local     string
}

// NewQName builds a QName.
func NewQName(namespace, local string) QName {
	return QName{Namespace: namespace, Local: local}
}

// String returns the QName in {namespace}local format, or just local if no namespace.
func (q QName) String() string {
	if q.Namespace == "" {
		return q.Local
	}

	return "{" + q.Namespace + "}" + q.Local
}

// IsZero returns true if the QName is the zero value.
func (q QName) IsZero() bool {
	return q.Namespace == "" && q.Local == ""
}

// WithLocal returns a copy of q with a different local part.
func (q QName) WithLocal(local string) QName {
	return QName{Namespace: q.Namespace, Local: local}
}

// ParseQName parses the {namespace}local text form.
func ParseQName(s string) (QName, error) {
	if !strings.HasPrefix(s, "{") {
		if s == "" {
			return QName{}, fmt.Errorf("invalid qname: empty string")
		}

		return QName{Local: s}, nil
	}

	ns, local, ok := strings.Cut(s[1:], "}")
	if !ok || local == "" {
		return QName{}, fmt.Errorf("invalid qname %q", s)
	}

	return QName{Namespace: ns, Local: local}, nil
}

// MustQName is ParseQName for literals known to be valid.
func MustQName(s string) QName {
	q, err := ParseQName(s)
	if err != nil {
		panic(err)
	}

	return q
}

// MarshalText implements encoding.TextMarshaler.
func (q QName) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *QName) UnmarshalText(text []byte) error {
	parsed, err := ParseQName(string(text))
	if err != nil {
		return err
	}

	*q = parsed

	return nil
}
