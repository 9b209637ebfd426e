package handlers

import (
	"math/big"
	"strconv"
	"strings"

	"schema-compiler/internal/container"
	"schema-compiler/internal/diagnostic"
	"schema-compiler/internal/ir"
)

// SanitizeAttributesDefaultValue checks every default value against the
// field types. Enumeration defaults are bound to their member; defaults no
// type accepts fall back to a string field.
type SanitizeAttributesDefaultValue struct {
	c *container.Container
}

// NewSanitizeAttributesDefaultValue returns the handler.
func NewSanitizeAttributesDefaultValue(c *container.Container) *SanitizeAttributesDefaultValue {
	return &SanitizeAttributesDefaultValue{c: c}
}

// Process implements container.Handler.
func (h *SanitizeAttributesDefaultValue) Process(t *ir.Type) error {
	for _, f := range t.Fields {
		if err := h.processField(t, f); err != nil {
			return err
		}

		for _, choice := range f.Choices {
			if err := h.processField(t, choice); err != nil {
				return err
			}
		}
	}

	return nil
}

func (h *SanitizeAttributesDefaultValue) processField(t *ir.Type, f *ir.Field) error {
	if f.IsEnumeration() {
		return nil
	}

	if shouldResetRequired(f) {
		f.Restrictions.SetMin(0)
	}

	if shouldResetDefault(f) {
		f.Default = ""
		f.Fixed = false
	}

	if f.Default == "" {
		return nil
	}

	matched, enumFound, err := h.bindEnumDefault(t, f)
	if err != nil || matched {
		return err
	}

	if enumFound {
		h.c.Warn(diagnostic.CodeDefaultEnumMismatch, t.QName.String(), f.Name,
			"default value %q matches no enumeration member, dropped", f.Default)

		f.Default = ""
		f.Fixed = false

		return nil
	}

	if validNativeDefault(f) {
		return nil
	}

	h.c.Warn(diagnostic.CodeDefaultTypeMismatch, t.QName.String(), f.Name,
		"default value %q matches none of the field types, reset to %s", f.Default, ir.XSString)

	f.Types = []*ir.FieldType{ir.NewNative(ir.XSString)}
	f.Restrictions.Tokens = false

	return nil
}

// shouldResetRequired makes untyped elements without a default optional.
func shouldResetRequired(f *ir.Field) bool {
	if f.IsAttribute() || f.Default != "" || f.IsList() || len(f.Types) == 0 {
		return false
	}

	for _, ft := range f.Types {
		if !ft.Native || ft.QName != ir.XSAnyType {
			return false
		}
	}

	return true
}

// shouldResetDefault drops defaults that cannot apply: on lists and on
// optional elements.
func shouldResetDefault(f *ir.Field) bool {
	if f.Default == "" {
		return false
	}

	return f.IsList() || (!f.IsAttribute() && !f.IsText() && f.IsOptional())
}

// bindEnumDefault binds the default to a member of an enumeration type of
// f. enumFound reports whether f has an enumeration type at all.
func (h *SanitizeAttributesDefaultValue) bindEnumDefault(t *ir.Type, f *ir.Field) (matched, enumFound bool, err error) {
	for _, ft := range f.Types {
		if ft.Native {
			continue
		}

		var source *ir.Type
		if ft.Forward {
			source, err = h.c.FindInner(t, ft.QName)
		} else {
			ref := ft.Reference
			source, err = h.c.Find(ft.QName, func(s *ir.Type) bool { return ref.IsZero() || s.ID == ref })
		}

		if err != nil {
			return false, false, err
		}

		if source == nil || !source.IsEnumeration() {
			continue
		}

		enumFound = true

		if f.Restrictions.Tokens {
			if allTokensMatch(source, f.Default) {
				return true, true, nil
			}

			continue
		}

		for _, member := range source.Fields {
			if member.Default == f.Default {
				f.DefaultEnum = &ir.EnumValue{Type: source.QName, Ref: source.ID, Member: member.Name}
				return true, true, nil
			}
		}
	}

	return false, enumFound, nil
}

func allTokensMatch(enum *ir.Type, value string) bool {
	values := make(map[string]bool, len(enum.Fields))
	for _, member := range enum.Fields {
		values[member.Default] = true
	}

	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return false
	}

	for _, token := range tokens {
		if !values[token] {
			return false
		}
	}

	return true
}

// validNativeDefault reports whether one of the native types of f accepts
// the default. Non-native, non-enumeration types accept anything.
func validNativeDefault(f *ir.Field) bool {
	values := []string{f.Default}
	if f.Restrictions.Tokens {
		values = strings.Fields(f.Default)
	}

	for _, ft := range f.Types {
		if !ft.Native {
			return true
		}

		ok := true

		for _, v := range values {
			if !acceptsValue(ft.Kind(), v) {
				ok = false
				break
			}
		}

		if ok {
			return true
		}
	}

	return false
}

func acceptsValue(kind ir.DataKind, value string) bool {
	v := strings.TrimSpace(value)

	switch kind {
	case ir.KindBoolean:
		switch v {
		case "true", "false", "1", "0":
			return true
		default:
			return false
		}
	case ir.KindInteger:
		_, ok := new(big.Int).SetString(v, 10)
		return ok
	case ir.KindFloat:
		switch v {
		case "INF", "+INF", "-INF", "NaN":
			return true
		}

		_, err := strconv.ParseFloat(v, 64)

		return err == nil
	case ir.KindDecimal:
		_, ok := new(big.Float).SetString(v)
		return ok && !strings.ContainsAny(v, "eEnNiIxXpP_")
	default:
		return true
	}
}
