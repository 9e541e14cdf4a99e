package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// ErrNotFound indicates the configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// ParseError reports that a document failed to parse under its dialect's
// grammar. For the JSON dialect the cleaned (comment-stripped) text has
// already been persisted to DebugFile when the error is returned.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Line is the 1-based line of the failure, 0 if unknown.
	Line int
	// Column is the 1-based column of the failure, 0 if unknown.
	Column int
	// DebugFile is the sibling file holding the cleaned text, if written.
	DebugFile string
	// Err is the underlying decode error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at line %d: %v", e.Path, e.Line, e.Err)
	default:
		return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
	}
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WriteReason classifies a write failure so callers can decide whether a
// retry is worth offering.
type WriteReason uint8

const (
	// WriteReasonIO is an unclassified I/O failure.
	WriteReasonIO WriteReason = iota
	// WriteReasonPermission indicates the file is not writable. Likely
	// permanent; the caller should suggest checking permissions.
	WriteReasonPermission
	// WriteReasonLocked indicates another process holds the file. Likely
	// transient; the caller may retry after the other program closes it.
	WriteReasonLocked
)

// String returns the reason name.
func (r WriteReason) String() string {
	switch r {
	case WriteReasonPermission:
		return "permission_denied"
	case WriteReasonLocked:
		return "file_locked"
	default:
		return "io_error"
	}
}

// WriteError reports an I/O failure during write-back. The write is not
// transactional: after a WriteError the on-disk state is indeterminate and
// the caller must re-parse before further edits.
type WriteError struct {
	// Path is the file that failed to write.
	Path string
	// Reason classifies the failure.
	Reason WriteReason
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write error (%s) for %s: %v", e.Reason, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying later may succeed.
func (e *WriteError) Transient() bool {
	return e.Reason == WriteReasonLocked
}

// classifyWriteError wraps an I/O error with its failure reason.
func classifyWriteError(path string, err error) *WriteError {
	reason := WriteReasonIO
	switch {
	case errors.Is(err, fs.ErrPermission):
		reason = WriteReasonPermission
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.ETXTBSY):
		reason = WriteReasonLocked
	}
	return &WriteError{Path: path, Reason: reason, Err: err}
}
