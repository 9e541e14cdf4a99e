package settings

// FieldInfo identifies one configuration field inside a parsed document.
type FieldInfo struct {
	// Path is the dotted field path, unique within one ConfigData
	// (e.g. "Graphic Options.Exaggerate Yaw" or "DISPLAY.Resolution").
	Path string

	// Value is the current value. It is the only part of a parsed document
	// that is mutated after parsing, by the configuration model.
	Value Value

	// Original is the value captured at parse time. The writers compare
	// Value against Original to decide which source lines to patch.
	Original Value

	// Description is the human-readable description extracted from comments
	// or shadow keys. Empty when none was found.
	Description string

	// Type is the field's value shape.
	Type Type

	// Category is the immediate grouping key: the top-level JSON object key
	// above the field, or the INI section name. Top-level scalar fields with
	// no enclosing object fall under "General".
	Category string

	// Line is the zero-based source line the field was parsed from.
	// Populated by the INI parser only.
	Line int

	// SourceLine is the verbatim source line the field was parsed from.
	// Populated by the INI parser only.
	SourceLine string
}

// Name returns the final path segment, the bare field name.
func (f *FieldInfo) Name() string {
	for i := len(f.Path) - 1; i >= 0; i-- {
		if f.Path[i] == '.' {
			return f.Path[i+1:]
		}
	}
	return f.Path
}

// Dirty reports whether the current value differs from the parse-time value.
func (f *FieldInfo) Dirty() bool {
	return !f.Value.Equal(f.Original)
}
