package ir

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Unbounded is the MaxOccurs value of an unbounded particle.
const Unbounded = math.MaxInt32

// ErrUnknownFacet is returned by SetFacet for names outside the documented facet set.
var ErrUnknownFacet = errors.New("unknown facet")

// PathKind marks the structural particle a PathEntry stands for.
type PathKind string

const (
	PathSequence PathKind = "s"
	PathChoice   PathKind = "c"
	PathGroup    PathKind = "g"
	PathElement  PathKind = "e"
)

// PathEntry is one step of a field's position in the original content model.
type PathEntry struct {
	Kind PathKind `json:"kind" yaml:"kind"`
	ID   int      `json:"id" yaml:"id"`
	Min  int      `json:"min" yaml:"min"`
	Max  int      `json:"max" yaml:"max"`
}

// Restrictions holds occurrence bounds, structural markers and value facets.
// Unset pointers mean "not restricted"; unset occurrences default to 1.
type Restrictions struct {
	MinOccurs        *int        `json:"minOccurs,omitempty" yaml:"minOccurs,omitempty"`
	MaxOccurs        *int        `json:"maxOccurs,omitempty" yaml:"maxOccurs,omitempty"`
	MinExclusive     *string     `json:"minExclusive,omitempty" yaml:"minExclusive,omitempty"`
	MinInclusive     *string     `json:"minInclusive,omitempty" yaml:"minInclusive,omitempty"`
	MaxExclusive     *string     `json:"maxExclusive,omitempty" yaml:"maxExclusive,omitempty"`
	MaxInclusive     *string     `json:"maxInclusive,omitempty" yaml:"maxInclusive,omitempty"`
	MinLength        *int        `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength        *int        `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Length           *int        `json:"length,omitempty" yaml:"length,omitempty"`
	TotalDigits      *int        `json:"totalDigits,omitempty" yaml:"totalDigits,omitempty"`
	FractionDigits   *int        `json:"fractionDigits,omitempty" yaml:"fractionDigits,omitempty"`
	WhiteSpace       *string     `json:"whiteSpace,omitempty" yaml:"whiteSpace,omitempty"`
	Pattern          *string     `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	ExplicitTimezone *string     `json:"explicitTimezone,omitempty" yaml:"explicitTimezone,omitempty"`
	ProcessContents  string      `json:"processContents,omitempty" yaml:"processContents,omitempty"`
	Nillable         bool        `json:"nillable,omitempty" yaml:"nillable,omitempty"`
	Tokens           bool        `json:"tokens,omitempty" yaml:"tokens,omitempty"`
	Sequence         int         `json:"sequence,omitempty" yaml:"sequence,omitempty"`
	Choice           int         `json:"choice,omitempty" yaml:"choice,omitempty"`
	Group            int         `json:"group,omitempty" yaml:"group,omitempty"`
	Path             []PathEntry `json:"path,omitempty" yaml:"path,omitempty"`
}

// Occurs returns restrictions with the given occurrence bounds.
func Occurs(minOccurs, maxOccurs int) Restrictions {
	return Restrictions{MinOccurs: &minOccurs, MaxOccurs: &maxOccurs}
}

// Min returns the lower occurrence bound.
func (r *Restrictions) Min() int {
	if r.MinOccurs == nil {
		return 1
	}

	return *r.MinOccurs
}

// Max returns the upper occurrence bound.
func (r *Restrictions) Max() int {
	if r.MaxOccurs == nil {
		return 1
	}

	return *r.MaxOccurs
}

// SetMin sets the lower occurrence bound.
func (r *Restrictions) SetMin(n int) {
	r.MinOccurs = &n
}

// SetMax sets the upper occurrence bound, saturating at Unbounded.
func (r *Restrictions) SetMax(n int) {
	if n > Unbounded || n < 0 {
		n = Unbounded
	}

	r.MaxOccurs = &n
}

// IsList reports whether the field may repeat.
func (r *Restrictions) IsList() bool {
	return r.Max() > 1
}

// IsOptional reports whether the field may be absent.
func (r *Restrictions) IsOptional() bool {
	return r.Min() == 0
}

// IsProhibited reports whether the field must be absent.
func (r *Restrictions) IsProhibited() bool {
	return r.MaxOccurs != nil && *r.MaxOccurs == 0
}

// MulOccurs multiplies the occurrence bounds, saturating at Unbounded.
func MulOccurs(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}

	if a >= Unbounded || b >= Unbounded || a > Unbounded/b {
		return Unbounded
	}

	return a * b
}

// AddOccurs adds occurrence bounds, saturating at Unbounded.
func AddOccurs(a, b int) int {
	if a >= Unbounded-b {
		return Unbounded
	}

	return a + b
}

// Clone returns a deep copy.
func (r Restrictions) Clone() Restrictions {
	out := r
	out.MinOccurs = cloneInt(r.MinOccurs)
	out.MaxOccurs = cloneInt(r.MaxOccurs)
	out.MinLength = cloneInt(r.MinLength)
	out.MaxLength = cloneInt(r.MaxLength)
	out.Length = cloneInt(r.Length)
	out.TotalDigits = cloneInt(r.TotalDigits)
	out.FractionDigits = cloneInt(r.FractionDigits)
	out.MinExclusive = cloneString(r.MinExclusive)
	out.MinInclusive = cloneString(r.MinInclusive)
	out.MaxExclusive = cloneString(r.MaxExclusive)
	out.MaxInclusive = cloneString(r.MaxInclusive)
	out.WhiteSpace = cloneString(r.WhiteSpace)
	out.Pattern = cloneString(r.Pattern)
	out.ExplicitTimezone = cloneString(r.ExplicitTimezone)

	if r.Path != nil {
		out.Path = append([]PathEntry(nil), r.Path...)
	}

	return out
}

// Merge copies every facet set in source over r. Occurrence bounds and the
// structural path are left to the caller.
func (r *Restrictions) Merge(source Restrictions) {
	mergeInt(&r.MinLength, source.MinLength)
	mergeInt(&r.MaxLength, source.MaxLength)
	mergeInt(&r.Length, source.Length)
	mergeInt(&r.TotalDigits, source.TotalDigits)
	mergeInt(&r.FractionDigits, source.FractionDigits)
	mergeString(&r.MinExclusive, source.MinExclusive)
	mergeString(&r.MinInclusive, source.MinInclusive)
	mergeString(&r.MaxExclusive, source.MaxExclusive)
	mergeString(&r.MaxInclusive, source.MaxInclusive)
	mergeString(&r.WhiteSpace, source.WhiteSpace)
	mergeString(&r.Pattern, source.Pattern)
	mergeString(&r.ExplicitTimezone, source.ExplicitTimezone)

	if source.ProcessContents != "" {
		r.ProcessContents = source.ProcessContents
	}

	r.Nillable = r.Nillable || source.Nillable
	r.Tokens = r.Tokens || source.Tokens
}

// SetFacet sets a facet from its schema name and lexical value.
func (r *Restrictions) SetFacet(name, value string) error {
	var err error

	switch name {
	case "minOccurs":
		err = setOccurs(&r.MinOccurs, value)
	case "maxOccurs":
		err = setOccurs(&r.MaxOccurs, value)
	case "minExclusive":
		r.MinExclusive = &value
	case "minInclusive":
		r.MinInclusive = &value
	case "maxExclusive":
		r.MaxExclusive = &value
	case "maxInclusive":
		r.MaxInclusive = &value
	case "minLength":
		err = setInt(&r.MinLength, value)
	case "maxLength":
		err = setInt(&r.MaxLength, value)
	case "length":
		err = setInt(&r.Length, value)
	case "totalDigits":
		err = setInt(&r.TotalDigits, value)
	case "fractionDigits":
		err = setInt(&r.FractionDigits, value)
	case "whiteSpace":
		r.WhiteSpace = &value
	case "pattern":
		if r.Pattern != nil {
			// Multiple patterns are alternatives.
			joined := *r.Pattern + "|" + value
			r.Pattern = &joined
		} else {
			r.Pattern = &value
		}
	case "explicitTimezone":
		r.ExplicitTimezone = &value
	case "processContents":
		r.ProcessContents = value
	case "nillable":
		r.Nillable, err = strconv.ParseBool(value)
	case "tokens":
		r.Tokens, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFacet, name)
	}

	if err != nil {
		return fmt.Errorf("invalid %s facet value %q: %w", name, value, err)
	}

	return nil
}

func setOccurs(dst **int, value string) error {
	if value == "unbounded" {
		n := Unbounded
		*dst = &n

		return nil
	}

	return setInt(dst, value)
}

func setInt(dst **int, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}

	*dst = &n

	return nil
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		*dst = cloneInt(src)
	}
}

func mergeString(dst **string, src *string) {
	if src != nil {
		*dst = cloneString(src)
	}
}
