package lexicon

import "errors"

var (
	// ErrEmptyLocale is returned when a resolver is constructed with an empty locale.
	ErrEmptyLocale = errors.New("locale cannot be empty")
	// ErrNilFunc is returned when a required function option receives nil.
	ErrNilFunc = errors.New("function cannot be nil")
	// ErrNegativeCapacity is returned when the cache capacity option is negative.
	ErrNegativeCapacity = errors.New("cache capacity cannot be negative")
)

// Code classifies a failure delivered through the error sink.
type Code string

const (
	// CodeUnregisteredLocale reports a locale change to a locale outside the accepted set.
	CodeUnregisteredLocale Code = "UNREGISTERED_LOCALE"
	// CodeInvalidNamespaceSyntax reports an empty or malformed namespace path.
	CodeInvalidNamespaceSyntax Code = "INVALID_NAMESPACE_SYNTAX"
	// CodeInvalidKeySyntax reports an empty or malformed key path.
	CodeInvalidKeySyntax Code = "INVALID_KEY_SYNTAX"
	// CodeInvalidValueType reports a stored value of an unsupported type.
	CodeInvalidValueType Code = "INVALID_VALUE_TYPE"
	// CodeNamespaceKeyIntersection reports a new namespace colliding with an existing key path.
	CodeNamespaceKeyIntersection Code = "NAMESPACE_KEY_INTERSECTION"
	// CodeKeyNamespaceIntersection reports a new key colliding with a registered namespace path.
	CodeKeyNamespaceIntersection Code = "KEY_NAMESPACE_INTERSECTION"
	// CodeUnregisteredKey reports a resolution that found no value without a cycle being the cause.
	CodeUnregisteredKey Code = "UNREGISTERED_KEY"
	// CodeCircularDependency reports a borrow traversal revisiting an already-visited key.
	CodeCircularDependency Code = "CIRCULAR_DEPENDENCY"
)

// Report is the structured record delivered to the error sink for every
// failed operation. Namespace is the namespace scope the failure belongs to,
// empty when there is none. Key names the subject of the failure: the
// offending key, path, or locale.
type Report struct {
	Code      Code
	Namespace string
	Key       string
	Message   string
}

// ReportFunc receives failure reports. The resolver invokes it synchronously
// on the goroutine that performed the failed operation, outside the
// resolver's internal lock, so implementations may safely call back into the
// resolver.
type ReportFunc func(Report)
