package model

import (
	"errors"
	"fmt"
)

// ErrorCode classifies model-stage failures for programmatic handling.
type ErrorCode string

const (
	// ErrCodeParse indicates a malformed model document or a shape record
	// missing mandatory fields. Fatal, aborts the run immediately.
	ErrCodeParse ErrorCode = "MODEL_PARSE_ERROR"

	// ErrCodeDanglingReference indicates a member or mixin target that is
	// absent from the shape table. Fatal, aborts the run immediately.
	ErrCodeDanglingReference ErrorCode = "DANGLING_REFERENCE"

	// ErrCodeUnknownShapeKind indicates a shape kind outside the closed set.
	ErrCodeUnknownShapeKind ErrorCode = "UNKNOWN_SHAPE_KIND"

	// ErrCodeConflictingTrait indicates two mutually exclusive traits declared
	// at the same precedence level on one shape or member.
	ErrCodeConflictingTrait ErrorCode = "CONFLICTING_TRAIT"
)

// Error is a classified model-stage error. It carries the offending shape,
// member, and target identifiers for diagnostics.
type Error struct {
	// Code is the error classification.
	Code ErrorCode `json:"code"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Shape is the shape ID the error is attached to, if any.
	Shape ShapeID `json:"shape,omitempty"`

	// Member is the member name the error is attached to, if any.
	Member string `json:"member,omitempty"`

	// Target is the missing or offending reference target, if any.
	Target ShapeID `json:"target,omitempty"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	switch {
	case e.Shape != "" && e.Member != "":
		msg = fmt.Sprintf("%s (shape=%s, member=%s)", msg, e.Shape, e.Member)
	case e.Shape != "":
		msg = fmt.Sprintf("%s (shape=%s)", msg, e.Shape)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error { return e.Err }

// Is implements error equality for errors.Is: two model errors match when
// their codes match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithShape attaches a shape ID to the error.
func (e *Error) WithShape(id ShapeID) *Error {
	e.Shape = id
	return e
}

// WithMember attaches a member name to the error.
func (e *Error) WithMember(name string) *Error {
	e.Member = name
	return e
}

// NewParseError creates a MODEL_PARSE_ERROR wrapping err.
func NewParseError(message string, err error) *Error {
	return &Error{Code: ErrCodeParse, Message: message, Err: err}
}

// NewDanglingReferenceError creates a DANGLING_REFERENCE error naming the
// shape holding the reference and the missing target.
func NewDanglingReferenceError(shape ShapeID, member string, target ShapeID) *Error {
	return &Error{
		Code:    ErrCodeDanglingReference,
		Message: fmt.Sprintf("reference to undefined shape %q", target),
		Shape:   shape,
		Member:  member,
		Target:  target,
	}
}

// NewUnknownShapeKindError creates an UNKNOWN_SHAPE_KIND error for a raw kind
// string outside the closed set.
func NewUnknownShapeKindError(kind string) *Error {
	return &Error{
		Code:    ErrCodeUnknownShapeKind,
		Message: fmt.Sprintf("unknown shape kind %q", kind),
	}
}

// NewConflictingTraitError creates a CONFLICTING_TRAIT error for two mutually
// exclusive traits declared at the same precedence level.
func NewConflictingTraitError(shape ShapeID, member, traitA, traitB string) *Error {
	return &Error{
		Code:    ErrCodeConflictingTrait,
		Message: fmt.Sprintf("traits %q and %q are mutually exclusive", traitA, traitB),
		Shape:   shape,
		Member:  member,
	}
}

// IsCode reports whether err is a model error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
