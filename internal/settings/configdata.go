package settings

import "strings"

// ConfigData is one parsed configuration document: its ordered field table,
// the descriptions extracted before parsing, and the original file retained
// line by line for structure-preserving write-back.
//
// Field insertion order is document order after flattening. Raw lines are
// immutable by convention; field values are the only post-parse mutation and
// happen in place through SetValue.
type ConfigData struct {
	fields map[string]*FieldInfo
	order  []string

	descriptions map[string]string

	rawLines []string
}

// NewConfigData returns an empty document.
func NewConfigData() *ConfigData {
	return &ConfigData{
		fields:       make(map[string]*FieldInfo),
		descriptions: make(map[string]string),
	}
}

// AddField appends a field to the table. A duplicate path replaces the value
// but keeps the original insertion position.
func (c *ConfigData) AddField(f *FieldInfo) {
	if _, ok := c.fields[f.Path]; !ok {
		c.order = append(c.order, f.Path)
	}
	c.fields[f.Path] = f
}

// Field returns the field at path.
func (c *ConfigData) Field(path string) (*FieldInfo, bool) {
	f, ok := c.fields[path]
	return f, ok
}

// SetValue updates the current value of the field at path, in place.
// It reports whether the path exists.
func (c *ConfigData) SetValue(path string, v Value) bool {
	f, ok := c.fields[path]
	if !ok {
		return false
	}
	f.Value = v
	return true
}

// Paths returns all field paths in document order.
func (c *ConfigData) Paths() []string {
	return c.order
}

// Len returns the number of fields.
func (c *ConfigData) Len() int {
	return len(c.order)
}

// FieldMap returns the path-to-field mapping. The comparison engine consumes
// this shape directly.
func (c *ConfigData) FieldMap() map[string]*FieldInfo {
	return c.fields
}

// SetDescription records a description keyed by bare field name or full path.
func (c *ConfigData) SetDescription(name, desc string) {
	c.descriptions[name] = desc
}

// Description looks a description up by bare field name first, falling back
// to the full dotted path.
func (c *ConfigData) Description(name, path string) string {
	if d, ok := c.descriptions[name]; ok && d != "" {
		return d
	}
	return c.descriptions[path]
}

// SetRawLines retains the original file content, one entry per line with the
// line terminator preserved.
func (c *ConfigData) SetRawLines(lines []string) {
	c.rawLines = lines
}

// RawLines returns the retained source lines.
func (c *ConfigData) RawLines() []string {
	return c.rawLines
}

// CategoryIndex groups field paths by category, both in first-seen order.
type CategoryIndex struct {
	names  []string
	fields map[string][]string
}

// Names returns the category names in first-seen order.
func (ci *CategoryIndex) Names() []string {
	return ci.names
}

// Fields returns the field paths of one category, in document order.
func (ci *CategoryIndex) Fields(category string) []string {
	return ci.fields[category]
}

// Len returns the number of categories.
func (ci *CategoryIndex) Len() int {
	return len(ci.names)
}

// Categories derives the category index from the field table. It is a
// grouping over fields, not independent state: categories appear in the
// order first encountered while scanning fields in document order.
func (c *ConfigData) Categories() *CategoryIndex {
	ci := &CategoryIndex{fields: make(map[string][]string)}
	for _, path := range c.order {
		cat := c.fields[path].Category
		if _, ok := ci.fields[cat]; !ok {
			ci.names = append(ci.names, cat)
		}
		ci.fields[cat] = append(ci.fields[cat], path)
	}
	return ci
}

// SearchFields returns the paths whose final segment contains the query,
// case-insensitively, in document order.
func (c *ConfigData) SearchFields(query string) []string {
	q := strings.ToLower(query)
	var matches []string
	for _, path := range c.order {
		name := c.fields[path].Name()
		if strings.Contains(strings.ToLower(name), q) {
			matches = append(matches, path)
		}
	}
	return matches
}
