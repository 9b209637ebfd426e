package ir

import "fmt"

//go:generate go tool stringer -type=Status -trimprefix=Status -output=status_string.go

// Status tracks how far a Type has progressed through the pipeline.
// It only ever increases.
type Status int

const (
	StatusRaw Status = iota
	StatusUngrouping
	StatusUngrouped
	StatusFlattening
	StatusFlattened
	StatusSanitizing
	StatusSanitized
	StatusResolving
	StatusResolved
	StatusCleaning
	StatusCleaned
	StatusCompounding
	StatusCompounded
	StatusFinalizing
	StatusFinalized
)

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = StatusRaw
		return nil
	}

	for st := StatusRaw; st <= StatusFinalized; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}

	return fmt.Errorf("unknown status %q", text)
}
