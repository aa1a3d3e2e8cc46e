package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures surfaced by the expander and the scanner.
// It implements error so callers can match a kind directly with errors.Is.
type ErrorKind int

const (
	// UnsupportedFormat is returned for a filename with no recognised archive suffix.
	UnsupportedFormat ErrorKind = iota + 1
	// CorruptArchive is returned when an archive exists but cannot be decoded.
	CorruptArchive
	// IOFailure covers permission, disk, copy and delete errors.
	IOFailure
	// FolderNotFound is returned when the scan root does not exist.
	FolderNotFound
	// NoPatterns is returned when a scan is requested with an empty pattern set.
	NoPatterns
)

// String returns the string representation of ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case UnsupportedFormat:
		return "unsupported format"
	case CorruptArchive:
		return "corrupt archive"
	case IOFailure:
		return "io failure"
	case FolderNotFound:
		return "folder not found"
	case NoPatterns:
		return "no patterns"
	default:
		return "unknown"
	}
}

// Error implements the error interface for ErrorKind.
func (k ErrorKind) Error() string {
	return k.String()
}

// Error is a classified failure with the path that caused it.
type Error struct {
	Kind ErrorKind // Classification of the failure
	Op   string    // Operation that failed, e.g. "extract", "delete"
	Path string    // Offending file or directory
	Err  error     // Underlying error (optional)
}

// NewError creates a new Error.
func NewError(kind ErrorKind, op, path string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Op != "" {
		sb.WriteString(fmt.Sprintf(": %s", e.Op))
	}
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" %s", e.Path))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return 0
}
