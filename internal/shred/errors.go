package shred

import (
	"errors"
	"fmt"
)

// Kind classifies an extraction failure.
type Kind string

const (
	// KindMalformedContainer means the bytes are not a valid document of the
	// declared format.
	KindMalformedContainer Kind = "MALFORMED_CONTAINER"
	// KindNoReadableContent means the document parsed but no chapter passed
	// the admission policy.
	KindNoReadableContent Kind = "NO_READABLE_CONTENT"
	// KindUnsupportedFormat means the caller asked for a format with no engine.
	KindUnsupportedFormat Kind = "UNSUPPORTED_FORMAT"
)

// Error is an extraction failure. Two Errors match under errors.Is when
// their Kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind    Kind
	Format  Format
	Message string
	cause   error
}

// Sentinel errors for use with errors.Is.
var (
	ErrMalformedContainer = &Error{Kind: KindMalformedContainer, Message: "malformed container"}
	ErrNoReadableContent  = &Error{Kind: KindNoReadableContent, Message: "no readable content"}
	ErrUnsupportedFormat  = &Error{Kind: KindUnsupportedFormat, Message: "unsupported format"}
)

func (e *Error) Error() string {
	msg := e.Message
	if e.Format != "" {
		msg = string(e.Format) + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap returns the underlying parser error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func malformed(f Format, cause error) *Error {
	return &Error{Kind: KindMalformedContainer, Format: f, Message: "malformed container", cause: cause}
}

func noReadableContent(f Format) *Error {
	return &Error{
		Kind:    KindNoReadableContent,
		Format:  f,
		Message: "could not detect any readable text",
	}
}
