package model

import "github.com/simrig-tools/simconf/internal/settings"

// Event is a model state-transition notification. The set of variants is
// closed; observers switch on the concrete type.
type Event interface {
	event()
}

// ConfigurationLoaded is emitted after both documents parsed successfully
// and the field states were rebuilt.
type ConfigurationLoaded struct {
	// Fields is the total field count across both documents.
	Fields int
}

// FieldChanged is emitted when a field's current value changed.
type FieldChanged struct {
	Path  string
	Value settings.Value
}

// FieldReverted is emitted when a single field was restored to its baseline.
type FieldReverted struct {
	Path string
}

// AllChangesReverted is emitted once per RevertAll, not per field.
type AllChangesReverted struct {
	Count int
}

// ChangesApplied is emitted after both files were written and every field
// state promoted.
type ChangesApplied struct{}

func (ConfigurationLoaded) event() {}
func (FieldChanged) event()        {}
func (FieldReverted) event()       {}
func (AllChangesReverted) event()  {}
func (ChangesApplied) event()      {}

// Observer receives model events.
type Observer func(Event)

// Subscription represents a registered observer.
type Subscription struct {
	id    uint64
	model *Model
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.model != nil {
		s.model.unsubscribe(s.id)
		s.model = nil
	}
}
