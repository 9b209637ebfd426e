package ir

// XSNamespace is the XML Schema namespace; its built-in types are natives.
const XSNamespace = "http://www.w3.org/2001/XMLSchema"

// DataKind groups native datatypes by the target-language type they map to.
// Two natives with the same kind cannot be told apart after generation.
type DataKind int

const (
	KindUnknown DataKind = iota
	KindString
	KindBoolean
	KindInteger
	KindFloat
	KindDecimal
	KindQName
	KindBinary
	KindTemporal
	KindAny
)

// String returns the kind name.
func (k DataKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindQName:
		return "qname"
	case KindBinary:
		return "binary"
	case KindTemporal:
		return "temporal"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

var nativeKinds = map[string]DataKind{
	"anyType":            KindAny,
	"anySimpleType":      KindAny,
	"anyAtomicType":      KindAny,
	"string":             KindString,
	"normalizedString":   KindString,
	"token":              KindString,
	"language":           KindString,
	"Name":               KindString,
	"NCName":             KindString,
	"NMTOKEN":            KindString,
	"NMTOKENS":           KindString,
	"ID":                 KindString,
	"IDREF":              KindString,
	"IDREFS":             KindString,
	"ENTITY":             KindString,
	"ENTITIES":           KindString,
	"anyURI":             KindString,
	"NOTATION":           KindQName,
	"QName":              KindQName,
	"boolean":            KindBoolean,
	"integer":            KindInteger,
	"int":                KindInteger,
	"long":               KindInteger,
	"short":              KindInteger,
	"byte":               KindInteger,
	"nonNegativeInteger": KindInteger,
	"nonPositiveInteger": KindInteger,
	"negativeInteger":    KindInteger,
	"positiveInteger":    KindInteger,
	"unsignedInt":        KindInteger,
	"unsignedLong":       KindInteger,
	"unsignedShort":      KindInteger,
	"unsignedByte":       KindInteger,
	"float":              KindFloat,
	"double":             KindFloat,
	"decimal":            KindDecimal,
	"base64Binary":       KindBinary,
	"hexBinary":          KindBinary,
	"date":               KindTemporal,
	"dateTime":           KindTemporal,
	"dateTimeStamp":      KindTemporal,
	"time":               KindTemporal,
	"duration":           KindTemporal,
	"dayTimeDuration":    KindTemporal,
	"yearMonthDuration":  KindTemporal,
	"gYear":              KindTemporal,
	"gYearMonth":         KindTemporal,
	"gMonth":             KindTemporal,
	"gMonthDay":          KindTemporal,
	"gDay":               KindTemporal,
}

var tokenNatives = map[string]bool{
	"NMTOKENS": true,
	"IDREFS":   true,
	"ENTITIES": true,
}

// NativeKind returns the DataKind of a built-in datatype.
func NativeKind(q QName) (DataKind, bool) {
	if q.Namespace != XSNamespace {
		return KindUnknown, false
	}

	k, ok := nativeKinds[q.Local]

	return k, ok
}

// IsNative reports whether q names a built-in datatype.
func IsNative(q QName) bool {
	_, ok := NativeKind(q)
	return ok
}

// IsTokenList reports whether q is a whitespace separated list native (NMTOKENS, IDREFS, ENTITIES).
func IsTokenList(q QName) bool {
	return q.Namespace == XSNamespace && tokenNatives[q.Local]
}

// Common native qnames.
var (
	XSString  = QName{Namespace: XSNamespace, Local: "string"}
	XSAnyType = QName{Namespace: XSNamespace, Local: "anyType"}
)
