// Package compare diffs two flattened field tables, classifying each path as
// added, removed, type-changed or value-changed with type-aware equality.
package compare

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/simrig-tools/simconf/internal/settings"
)

// floatTolerance is the absolute tolerance for numeric comparisons.
const floatTolerance = 1e-10

// DifferenceType classifies one field-level difference.
type DifferenceType uint8

const (
	// ValueChanged means the path exists on both sides with equal types but
	// different values.
	ValueChanged DifferenceType = iota
	// TypeChanged means the path exists on both sides with different types.
	TypeChanged
	// FieldAdded means the path exists only on the right side.
	FieldAdded
	// FieldRemoved means the path exists only on the left side.
	FieldRemoved
)

// String returns the difference type name.
func (t DifferenceType) String() string {
	switch t {
	case ValueChanged:
		return "value_changed"
	case TypeChanged:
		return "type_changed"
	case FieldAdded:
		return "field_added"
	case FieldRemoved:
		return "field_removed"
	default:
		return "unknown"
	}
}

// Difference records one path's classification. It is transient report
// material with no lifecycle beyond a single comparison call.
type Difference struct {
	// Path is the full dotted field path.
	Path string
	// Name is the final path segment.
	Name string
	// Category is the field's grouping key.
	Category string
	// Type is the classification.
	Type DifferenceType
	// Left is the left-side value, nil when the field was added.
	Left *settings.Value
	// Right is the right-side value, nil when the field was removed.
	Right *settings.Value
	// FieldType is the field's value shape (the left side's when both exist).
	FieldType settings.Type
	// Description is the field's description, if any.
	Description string
}

// Summary tallies differences by kind.
type Summary struct {
	Total        int
	ValueChanged int
	TypeChanged  int
	FieldAdded   int
	FieldRemoved int
}

// Configurations compares two path-to-field mappings and returns the
// differences sorted by (category, field name, path).
func Configurations(left, right map[string]*settings.FieldInfo) []Difference {
	paths := make(map[string]struct{}, len(left)+len(right))
	for p := range left {
		paths[p] = struct{}{}
	}
	for p := range right {
		paths[p] = struct{}{}
	}

	var diffs []Difference
	for path := range paths {
		f1, ok1 := left[path]
		f2, ok2 := right[path]

		switch {
		case ok1 && !ok2:
			v := f1.Value
			diffs = append(diffs, Difference{
				Path:        path,
				Name:        f1.Name(),
				Category:    f1.Category,
				Type:        FieldRemoved,
				Left:        &v,
				FieldType:   f1.Type,
				Description: f1.Description,
			})

		case ok2 && !ok1:
			v := f2.Value
			diffs = append(diffs, Difference{
				Path:        path,
				Name:        f2.Name(),
				Category:    f2.Category,
				Type:        FieldAdded,
				Right:       &v,
				FieldType:   f2.Type,
				Description: f2.Description,
			})

		case ok1 && ok2:
			v1, v2 := f1.Value, f2.Value
			if f1.Type != f2.Type {
				diffs = append(diffs, Difference{
					Path:        path,
					Name:        f1.Name(),
					Category:    f1.Category,
					Type:        TypeChanged,
					Left:        &v1,
					Right:       &v2,
					FieldType:   f1.Type,
					Description: f1.Description,
				})
			} else if !ValuesEqual(&v1, &v2) {
				diffs = append(diffs, Difference{
					Path:        path,
					Name:        f1.Name(),
					Category:    f1.Category,
					Type:        ValueChanged,
					Left:        &v1,
					Right:       &v2,
					FieldType:   f1.Type,
					Description: f1.Description,
				})
			}
		}
	}

	sort.Slice(diffs, func(i, j int) bool {
		if diffs[i].Category != diffs[j].Category {
			return diffs[i].Category < diffs[j].Category
		}
		if diffs[i].Name != diffs[j].Name {
			return diffs[i].Name < diffs[j].Name
		}
		return diffs[i].Path < diffs[j].Path
	})

	return diffs
}

// ValuesEqual is the engine's type-aware equality: numbers compare within an
// absolute tolerance regardless of integer/float mix, strings compare after
// trimming surrounding whitespace, lists compare element-wise, and anything
// else falls back to strict equality. Nil stands for an absent value; two
// absent values are equal.
func ValuesEqual(v1, v2 *settings.Value) bool {
	if v1 == nil && v2 == nil {
		return true
	}
	if v1 == nil || v2 == nil {
		return false
	}

	if v1.IsNumeric() && v2.IsNumeric() {
		if v1.Type == settings.TypeInteger && v2.Type == settings.TypeInteger {
			return v1.Int == v2.Int
		}
		return math.Abs(v1.Float()-v2.Float()) < floatTolerance
	}

	if v1.Type == settings.TypeString && v2.Type == settings.TypeString {
		return strings.TrimSpace(v1.Str) == strings.TrimSpace(v2.Str)
	}

	if v1.Type == settings.TypeBoolean && v2.Type == settings.TypeBoolean {
		return v1.Bool == v2.Bool
	}

	if v1.Type == settings.TypeArray && v2.Type == settings.TypeArray {
		if len(v1.List) != len(v2.List) {
			return false
		}
		for i := range v1.List {
			if !ValuesEqual(&v1.List[i], &v2.List[i]) {
				return false
			}
		}
		return true
	}

	return v1.Equal(*v2)
}

// Summarize tallies a difference list by kind.
func Summarize(diffs []Difference) Summary {
	s := Summary{Total: len(diffs)}
	for _, d := range diffs {
		switch d.Type {
		case ValueChanged:
			s.ValueChanged++
		case TypeChanged:
			s.TypeChanged++
		case FieldAdded:
			s.FieldAdded++
		case FieldRemoved:
			s.FieldRemoved++
		}
	}
	return s
}

// CategoryDiffs groups the differences of one category.
type CategoryDiffs struct {
	Category string
	Diffs    []Difference
}

// ByCategory groups differences by category, categories in first-seen order
// of the (already sorted) input.
func ByCategory(diffs []Difference) []CategoryDiffs {
	index := make(map[string]int)
	var groups []CategoryDiffs

	for _, d := range diffs {
		i, ok := index[d.Category]
		if !ok {
			i = len(groups)
			index[d.Category] = i
			groups = append(groups, CategoryDiffs{Category: d.Category})
		}
		groups[i].Diffs = append(groups[i].Diffs, d)
	}

	return groups
}

// FormatValue renders a value for a comparison report: booleans as Yes/No,
// arrays by length, floats in general notation, long text truncated.
func FormatValue(v *settings.Value, t settings.Type) string {
	if v == nil {
		return "(not set)"
	}

	switch t {
	case settings.TypeBoolean:
		if v.Bool {
			return "Yes"
		}
		return "No"
	case settings.TypeArray:
		if v.Type == settings.TypeArray {
			return fmt.Sprintf("[%d items]", len(v.List))
		}
		return truncate(v.String())
	case settings.TypeFloat:
		if v.Type == settings.TypeFloat {
			return fmt.Sprintf("%.6g", v.Num)
		}
		return truncate(v.String())
	default:
		return truncate(v.String())
	}
}

// truncate caps display text at 50 runes.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50]) + "..."
}
