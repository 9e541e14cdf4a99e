package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/simrig-tools/simconf/internal/parser"
	"github.com/simrig-tools/simconf/internal/settings"
)

// iniPrefix namespaces INI field paths so they cannot collide with JSON
// paths in the combined state table.
const iniPrefix = "ini."

// Category is one entry of the merged category listing.
type Category struct {
	// Name is the display name ("JSON - <category>" or "DX11 - <section>").
	Name string
	// Fields are the model-level field paths in document order.
	Fields []string
}

// observerEntry pairs an observer with its subscription id so notification
// order follows registration order.
type observerEntry struct {
	id uint64
	fn Observer
}

// Model is the configuration model: it owns the two parsed documents and one
// FieldState per field across both, and drives revert and apply-all.
//
// The model is single-threaded by contract. All calls must come from one
// owner; a multi-threaded host serializes access itself.
type Model struct {
	log zerolog.Logger

	jsonParser *parser.JSONParser
	iniParser  *parser.INIParser

	jsonData *settings.ConfigData
	iniData  *settings.ConfigData
	jsonPath string
	iniPath  string

	states   map[string]*FieldState
	modified map[string]struct{}

	observers []observerEntry
	nextID    uint64
}

// New returns an empty model logging through the given logger.
func New(log zerolog.Logger) *Model {
	return &Model{
		log:        log.With().Str("component", "configuration_model").Logger(),
		jsonParser: parser.NewJSONParser(log),
		iniParser:  parser.NewINIParser(log),
		states:     make(map[string]*FieldState),
		modified:   make(map[string]struct{}),
	}
}

// Load parses both configuration files and rebuilds every field state from
// scratch. Any previous state, including unsaved edits, is discarded; this
// is a full reset, not a merge. Either parser's error propagates unchanged.
func (m *Model) Load(jsonPath, iniPath string) error {
	jsonData, err := m.jsonParser.ParseFile(jsonPath)
	if err != nil {
		m.log.Error().Err(err).Str("file", jsonPath).Msg("failed to load settings file")
		return err
	}

	iniData, err := m.iniParser.ParseFile(iniPath)
	if err != nil {
		m.log.Error().Err(err).Str("file", iniPath).Msg("failed to load INI file")
		return err
	}

	m.jsonData, m.jsonPath = jsonData, jsonPath
	m.iniData, m.iniPath = iniData, iniPath

	m.states = make(map[string]*FieldState)
	m.modified = make(map[string]struct{})

	for _, path := range jsonData.Paths() {
		f, _ := jsonData.Field(path)
		m.states[path] = NewFieldState(f.Value)
	}
	for _, path := range iniData.Paths() {
		f, _ := iniData.Field(path)
		m.states[iniPrefix+path] = NewFieldState(f.Value)
	}

	m.log.Info().
		Int("json_fields", jsonData.Len()).
		Int("ini_fields", iniData.Len()).
		Msg("configuration loaded")

	m.notify(ConfigurationLoaded{Fields: len(m.states)})
	return nil
}

// Paths returns every model-level field path: JSON paths in document order
// followed by ini.-prefixed INI paths in document order.
func (m *Model) Paths() []string {
	var paths []string
	if m.jsonData != nil {
		paths = append(paths, m.jsonData.Paths()...)
	}
	if m.iniData != nil {
		for _, p := range m.iniData.Paths() {
			paths = append(paths, iniPrefix+p)
		}
	}
	return paths
}

// FieldValue returns the current value of the field, or false for an unknown
// path. Unknown paths are not an error; callers discover valid paths through
// Categories.
func (m *Model) FieldValue(path string) (settings.Value, bool) {
	state, ok := m.states[path]
	if !ok {
		return settings.Value{}, false
	}
	return state.Current(), true
}

// State returns the change-tracking state of the field.
func (m *Model) State(path string) (*FieldState, bool) {
	s, ok := m.states[path]
	return s, ok
}

// FieldInfo returns the field's parse-time metadata, resolving the ini.
// namespace to the INI document.
func (m *Model) FieldInfo(path string) (*settings.FieldInfo, bool) {
	if rest, ok := strings.CutPrefix(path, iniPrefix); ok {
		if m.iniData == nil {
			return nil, false
		}
		return m.iniData.Field(rest)
	}
	if m.jsonData == nil {
		return nil, false
	}
	return m.jsonData.Field(path)
}

// SetFieldValue stores a new value for the field, coercing it to the type
// implied by the field's baseline value first (text inputs always hand back
// strings). It reports whether the value actually changed. On change the new
// value is propagated into the backing document so the writer sees it later.
func (m *Model) SetFieldValue(path string, value any) bool {
	state, ok := m.states[path]
	if !ok {
		m.log.Warn().Str("path", path).Msg("field not found")
		return false
	}

	converted := coerceToType(value, state.Original(), m.log)

	if !state.SetValue(converted) {
		return false
	}

	if state.IsModified() {
		m.modified[path] = struct{}{}
	} else {
		delete(m.modified, path)
	}

	m.updateConfigData(path, converted)
	m.notify(FieldChanged{Path: path, Value: converted})
	return true
}

// IsFieldModified reports whether the field's current value differs from its
// baseline. Unknown paths are never modified.
func (m *Model) IsFieldModified(path string) bool {
	state, ok := m.states[path]
	return ok && state.IsModified()
}

// ModifiedFields returns the paths of all currently modified fields.
func (m *Model) ModifiedFields() []string {
	paths := make([]string, 0, len(m.modified))
	for path := range m.modified {
		paths = append(paths, path)
	}
	return paths
}

// RevertField restores the field to its baseline value. It reports whether
// anything changed.
func (m *Model) RevertField(path string) bool {
	state, ok := m.states[path]
	if !ok {
		return false
	}

	if !state.Revert() {
		return false
	}

	delete(m.modified, path)
	m.updateConfigData(path, state.Current())
	m.notify(FieldReverted{Path: path})
	return true
}

// RevertAll reverts every modified field and returns the count. A single
// AllChangesReverted event is emitted, not one per field.
func (m *Model) RevertAll() int {
	count := 0
	for _, path := range m.ModifiedFields() {
		if m.RevertField(path) {
			count++
		}
	}

	if count > 0 {
		m.notify(AllChangesReverted{Count: count})
	}
	return count
}

// Apply writes both files back, JSON first. A JSON write failure aborts
// before the INI write is attempted, keeping the pair self-consistent. Only
// after both writes succeed is every field state promoted (current becomes
// the new baseline); on failure the in-memory state is left exactly as it
// was. Files are not rolled back: a failed write leaves the on-disk state
// indeterminate and the caller should re-parse before further edits.
func (m *Model) Apply() error {
	if m.jsonData != nil {
		if err := m.jsonParser.WriteFile(m.jsonData, m.jsonPath); err != nil {
			m.log.Error().Err(err).Str("file", m.jsonPath).Msg("failed to write settings file")
			return err
		}
	}

	if m.iniData != nil {
		if err := m.iniParser.WriteFile(m.iniData, m.iniPath); err != nil {
			m.log.Error().Err(err).Str("file", m.iniPath).Msg("failed to write INI file")
			return err
		}
	}

	for path := range m.modified {
		if state, ok := m.states[path]; ok {
			state.Apply()
		}
	}
	m.modified = make(map[string]struct{})

	m.log.Info().Msg("applied all configuration changes")
	m.notify(ChangesApplied{})
	return nil
}

// Categories merges both documents' category indexes into one ordered
// listing: JSON categories first under a "JSON - " prefix, then INI sections
// under "DX11 - " with their field paths re-prefixed into the ini namespace.
func (m *Model) Categories() []Category {
	var cats []Category

	if m.jsonData != nil {
		idx := m.jsonData.Categories()
		for _, name := range idx.Names() {
			cats = append(cats, Category{
				Name:   "JSON - " + name,
				Fields: idx.Fields(name),
			})
		}
	}

	if m.iniData != nil {
		idx := m.iniData.Categories()
		for _, name := range idx.Names() {
			fields := idx.Fields(name)
			prefixed := make([]string, len(fields))
			for i, f := range fields {
				prefixed[i] = iniPrefix + f
			}
			cats = append(cats, Category{
				Name:   "DX11 - " + name,
				Fields: prefixed,
			})
		}
	}

	return cats
}

// SearchFields returns paths whose final segment contains the query,
// case-insensitively. Descriptions and intermediate segments are not
// searched.
func (m *Model) SearchFields(query string) []string {
	var matches []string
	if m.jsonData != nil {
		matches = append(matches, m.jsonData.SearchFields(query)...)
	}
	if m.iniData != nil {
		for _, p := range m.iniData.SearchFields(query) {
			matches = append(matches, iniPrefix+p)
		}
	}
	return matches
}

// FieldInfos returns the combined path-to-field mapping in the model's path
// namespace, suitable for the comparison engine.
func (m *Model) FieldInfos() map[string]*settings.FieldInfo {
	infos := make(map[string]*settings.FieldInfo)
	if m.jsonData != nil {
		for p, f := range m.jsonData.FieldMap() {
			infos[p] = f
		}
	}
	if m.iniData != nil {
		for p, f := range m.iniData.FieldMap() {
			infos[iniPrefix+p] = f
		}
	}
	return infos
}

// HasChanges reports whether any field is modified.
func (m *Model) HasChanges() bool {
	return len(m.modified) > 0
}

// ChangeCount returns the number of modified fields.
func (m *Model) ChangeCount() int {
	return len(m.modified)
}

// IsValid reports whether no field carries a validation error.
func (m *Model) IsValid() bool {
	for _, state := range m.states {
		if !state.IsValid() {
			return false
		}
	}
	return true
}

// Subscribe registers an observer. Observers are invoked synchronously in
// registration order.
func (m *Model) Subscribe(fn Observer) *Subscription {
	id := m.nextID
	m.nextID++
	m.observers = append(m.observers, observerEntry{id: id, fn: fn})
	return &Subscription{id: id, model: m}
}

func (m *Model) unsubscribe(id uint64) {
	for i, e := range m.observers {
		if e.id == id {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// notify delivers an event to every observer. A panicking observer is logged
// and skipped so it cannot corrupt model state or block the others.
func (m *Model) notify(event Event) {
	for _, e := range m.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error().Interface("panic", r).Msg("observer failed")
				}
			}()
			e.fn(event)
		}()
	}
}

// updateConfigData propagates a new current value into the backing document
// so the writer sees it at apply time.
func (m *Model) updateConfigData(path string, value settings.Value) {
	if rest, ok := strings.CutPrefix(path, iniPrefix); ok {
		if m.iniData != nil {
			m.iniData.SetValue(rest, value)
		}
		return
	}
	if m.jsonData != nil {
		m.jsonData.SetValue(path, value)
	}
}

// coerceToType converts a caller-supplied value to the type implied by the
// field's baseline value. Invalid numeric text yields 0 rather than an
// error; a text control always hands back strings and the model stays total
// over known paths.
func coerceToType(input any, original settings.Value, log zerolog.Logger) settings.Value {
	switch original.Type {
	case settings.TypeBoolean:
		return settings.BoolValue(truthy(input))

	case settings.TypeInteger:
		switch v := input.(type) {
		case settings.Value:
			if v.IsNumeric() {
				return settings.IntValue(int64(v.Float()))
			}
			return coerceInt(v.String(), log)
		case int:
			return settings.IntValue(int64(v))
		case int64:
			return settings.IntValue(v)
		case float64:
			return settings.IntValue(int64(v))
		case bool:
			if v {
				return settings.IntValue(1)
			}
			return settings.IntValue(0)
		case string:
			return coerceInt(v, log)
		default:
			return coerceInt(stringify(input), log)
		}

	case settings.TypeFloat:
		switch v := input.(type) {
		case settings.Value:
			if v.IsNumeric() {
				return settings.FloatValue(v.Float())
			}
			return coerceFloat(v.String(), log)
		case int:
			return settings.FloatValue(float64(v))
		case int64:
			return settings.FloatValue(float64(v))
		case float64:
			return settings.FloatValue(v)
		case string:
			return coerceFloat(v, log)
		default:
			return coerceFloat(stringify(input), log)
		}

	default:
		// Strings, arrays and object blobs take the input's text form.
		return settings.StringValue(stringify(input))
	}
}

// coerceInt parses text as a float first so "1.0" truncates to 1; empty or
// invalid text yields 0.
func coerceInt(s string, log zerolog.Logger) settings.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return settings.IntValue(0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("could not convert to integer, using 0")
		return settings.IntValue(0)
	}
	return settings.IntValue(int64(f))
}

// coerceFloat parses text as a float; empty or invalid text yields 0.0.
func coerceFloat(s string, log zerolog.Logger) settings.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return settings.FloatValue(0)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn().Str("value", s).Msg("could not convert to float, using 0.0")
		return settings.FloatValue(0)
	}
	return settings.FloatValue(f)
}

// truthy coerces arbitrary input to a boolean. Strings follow the INI
// boolean word table; unrecognized non-empty strings count as true.
func truthy(input any) bool {
	switch v := input.(type) {
	case bool:
		return v
	case settings.Value:
		if v.Type == settings.TypeBoolean {
			return v.Bool
		}
		return truthy(v.String())
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "false", "off", "no", "0":
			return false
		default:
			return true
		}
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return input != nil
	}
}

// stringify renders arbitrary input as text.
func stringify(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case settings.Value:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", input)
	}
}
