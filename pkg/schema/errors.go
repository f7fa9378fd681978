package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies derivation-stage failures for programmatic handling.
type ErrorCode string

const (
	// ErrCodeInvalidAttributeConstraint indicates an attribute whose merged
	// constraints contradict each other (a read-only attribute marked
	// required, for example).
	ErrCodeInvalidAttributeConstraint ErrorCode = "INVALID_ATTRIBUTE_CONSTRAINT"

	// ErrCodeDuplicateAttribute indicates two members of one resource that
	// normalize to the same attribute name.
	ErrCodeDuplicateAttribute ErrorCode = "DUPLICATE_ATTRIBUTE"

	// ErrCodeDuplicateAlias indicates an enum alias that collides with
	// another alias or with a canonical value.
	ErrCodeDuplicateAlias ErrorCode = "DUPLICATE_ALIAS"

	// ErrCodeDuplicateResourceType indicates two resource shapes that resolve
	// to the same resource type name within one derivation run.
	ErrCodeDuplicateResourceType ErrorCode = "DUPLICATE_RESOURCE_TYPE"

	// ErrCodeInvalidSchema indicates a derived schema that failed structural
	// validation before assembly.
	ErrCodeInvalidSchema ErrorCode = "INVALID_SCHEMA"
)

// Error is a classified derivation error carrying the resource and attribute
// it applies to.
type Error struct {
	// Code is the error classification.
	Code ErrorCode `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Resource is the resource type name the error applies to, if known.
	Resource string `json:"resource,omitempty"`

	// Attribute is the attribute or enum value name the error applies to.
	Attribute string `json:"attribute,omitempty"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	switch {
	case e.Resource != "" && e.Attribute != "":
		msg = fmt.Sprintf("%s (resource=%s, attribute=%s)", msg, e.Resource, e.Attribute)
	case e.Resource != "":
		msg = fmt.Sprintf("%s (resource=%s)", msg, e.Resource)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error { return e.Err }

// Is implements error equality for errors.Is: two derivation errors match
// when their codes match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithResource attaches a resource type name to the error.
func (e *Error) WithResource(name string) *Error {
	e.Resource = name
	return e
}

// NewInvalidAttributeConstraintError reports contradictory constraints on one
// attribute.
func NewInvalidAttributeConstraintError(resource, attribute, detail string) *Error {
	return &Error{
		Code:      ErrCodeInvalidAttributeConstraint,
		Message:   detail,
		Resource:  resource,
		Attribute: attribute,
	}
}

// NewDuplicateAttributeError reports two members normalizing to one name.
func NewDuplicateAttributeError(resource, attribute string) *Error {
	return &Error{
		Code:      ErrCodeDuplicateAttribute,
		Message:   fmt.Sprintf("attribute %q declared more than once", attribute),
		Resource:  resource,
		Attribute: attribute,
	}
}

// NewDuplicateAliasError reports an alias colliding with another alias or a
// canonical enum value.
func NewDuplicateAliasError(enum, alias string) *Error {
	return &Error{
		Code:      ErrCodeDuplicateAlias,
		Message:   fmt.Sprintf("alias %q collides with an existing alias or canonical value", alias),
		Attribute: enum,
	}
}

// NewDuplicateResourceTypeError reports two resources sharing one type name.
func NewDuplicateResourceTypeError(resource string) *Error {
	return &Error{
		Code:     ErrCodeDuplicateResourceType,
		Message:  fmt.Sprintf("resource type %q derived more than once", resource),
		Resource: resource,
	}
}

// NewEnumNameCollisionError reports two distinct enum shapes of one resource
// normalizing to the same definition name.
func NewEnumNameCollisionError(resource, enum string) *Error {
	return &Error{
		Code:      ErrCodeInvalidSchema,
		Message:   fmt.Sprintf("enum definition %q derived from more than one shape", enum),
		Resource:  resource,
		Attribute: enum,
	}
}

// NewInvalidSchemaError reports a derived schema that failed validation.
func NewInvalidSchemaError(resource string, err error) *Error {
	return &Error{
		Code:     ErrCodeInvalidSchema,
		Message:  "derived schema failed validation",
		Resource: resource,
		Err:      err,
	}
}

// IsCode reports whether err is a derivation error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ErrorList collects non-fatal derivation errors so one run can report every
// defect in a model instead of stopping at the first.
type ErrorList []*Error

// Error implements the error interface.
func (l ErrorList) Error() string {
	if len(l) == 1 {
		return l[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d derivation errors:", len(l))
	for _, e := range l {
		b.WriteString("\n\t")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	out := make([]error, len(l))
	for i, e := range l {
		out[i] = e
	}
	return out
}

// ErrOrNil returns the list as an error, or nil when it is empty.
func (l ErrorList) ErrOrNil() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
