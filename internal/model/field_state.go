// Package model composes one JSON and one INI configuration document into a
// single addressable, edit-tracked surface: per-field original/current value
// pairs, revert and apply-all semantics, and typed change notifications.
package model

import (
	"time"

	"github.com/simrig-tools/simconf/internal/settings"
)

// ValidationState summarizes a field's validation buckets.
type ValidationState uint8

const (
	// Valid means no errors or warnings are recorded.
	Valid ValidationState = iota
	// Warning means at least one warning but no errors.
	Warning
	// Error means at least one error is recorded.
	Error
)

// String returns the state name.
func (s ValidationState) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "valid"
	}
}

// FieldState tracks one field's edits: the baseline value, the current
// value, and the validation buckets collaborators may populate. The model
// keeps one per field path, independent of the parser's own FieldInfo.
//
// Invariant: IsModified() == !current.Equal(original) after every SetValue,
// Revert, and Apply.
type FieldState struct {
	original   settings.Value
	current    settings.Value
	modified   bool
	modifiedAt time.Time

	errors   []string
	warnings []string
	state    ValidationState
}

// NewFieldState returns a clean state with original == current == value.
func NewFieldState(value settings.Value) *FieldState {
	return &FieldState{original: value, current: value}
}

// SetValue stores a new current value. It reports whether the value actually
// changed. A change clears the validation buckets.
func (s *FieldState) SetValue(value settings.Value) bool {
	if value.Equal(s.current) {
		return false
	}

	s.current = value
	s.modified = !value.Equal(s.original)
	if s.modified {
		s.modifiedAt = time.Now()
	} else {
		s.modifiedAt = time.Time{}
	}

	s.ClearValidation()
	return true
}

// Revert restores the current value to the baseline. It reports whether
// anything changed.
func (s *FieldState) Revert() bool {
	if !s.modified {
		return false
	}

	s.current = s.original
	s.modified = false
	s.modifiedAt = time.Time{}
	s.ClearValidation()
	return true
}

// Apply promotes the current value to the new baseline. Called once per
// successful write-back.
func (s *FieldState) Apply() {
	s.original = s.current
	s.modified = false
	s.modifiedAt = time.Time{}
}

// Current returns the current value.
func (s *FieldState) Current() settings.Value {
	return s.current
}

// Original returns the baseline value.
func (s *FieldState) Original() settings.Value {
	return s.original
}

// IsModified reports whether the current value differs from the baseline.
func (s *FieldState) IsModified() bool {
	return s.modified
}

// ModifiedAt returns when the field was last modified; the zero time when
// the field is clean.
func (s *FieldState) ModifiedAt() time.Time {
	return s.modifiedAt
}

// AddError records a validation error. Duplicates are ignored.
func (s *FieldState) AddError(msg string) {
	for _, e := range s.errors {
		if e == msg {
			return
		}
	}
	s.errors = append(s.errors, msg)
	s.state = Error
}

// AddWarning records a validation warning. Duplicates are ignored; an
// existing error state is not downgraded.
func (s *FieldState) AddWarning(msg string) {
	for _, w := range s.warnings {
		if w == msg {
			return
		}
	}
	s.warnings = append(s.warnings, msg)
	if s.state == Valid {
		s.state = Warning
	}
}

// ClearValidation empties both buckets.
func (s *FieldState) ClearValidation() {
	s.errors = s.errors[:0]
	s.warnings = s.warnings[:0]
	s.state = Valid
}

// Validation returns the summarized state.
func (s *FieldState) Validation() ValidationState {
	return s.state
}

// HasErrors reports whether any error is recorded.
func (s *FieldState) HasErrors() bool {
	return len(s.errors) > 0
}

// HasWarnings reports whether any warning is recorded.
func (s *FieldState) HasWarnings() bool {
	return len(s.warnings) > 0
}

// IsValid reports whether the field has no errors.
func (s *FieldState) IsValid() bool {
	return !s.HasErrors()
}

// Messages returns all validation messages, errors first.
func (s *FieldState) Messages() []string {
	msgs := make([]string, 0, len(s.errors)+len(s.warnings))
	msgs = append(msgs, s.errors...)
	msgs = append(msgs, s.warnings...)
	return msgs
}
