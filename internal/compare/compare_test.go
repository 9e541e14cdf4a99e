package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simrig-tools/simconf/internal/settings"
)

func field(path, category string, v settings.Value) *settings.FieldInfo {
	return &settings.FieldInfo{Path: path, Value: v, Original: v, Type: v.Type, Category: category}
}

func TestValuesEqualNumericTolerance(t *testing.T) {
	a := settings.FloatValue(1.0)
	b := settings.FloatValue(1.00000000001)
	assert.True(t, ValuesEqual(&a, &b), "differences below the tolerance are not differences")

	c := settings.FloatValue(1.001)
	assert.False(t, ValuesEqual(&a, &c))

	// Integer/float mix compares numerically.
	i := settings.IntValue(2)
	f := settings.FloatValue(2.0)
	assert.True(t, ValuesEqual(&i, &f))

	// Two integers compare exactly.
	x := settings.IntValue(5)
	y := settings.IntValue(6)
	assert.False(t, ValuesEqual(&x, &y))
}

func TestValuesEqualStringsTrimmed(t *testing.T) {
	a := settings.StringValue("  Borderless ")
	b := settings.StringValue("Borderless")
	assert.True(t, ValuesEqual(&a, &b))

	c := settings.StringValue("Fullscreen")
	assert.False(t, ValuesEqual(&b, &c))
}

func TestValuesEqualArrays(t *testing.T) {
	a := settings.ArrayValue(settings.IntValue(1), settings.IntValue(2))
	b := settings.ArrayValue(settings.FloatValue(1.0), settings.FloatValue(2.0))
	assert.True(t, ValuesEqual(&a, &b), "element comparison reuses the tolerant rules")

	short := settings.ArrayValue(settings.IntValue(1))
	assert.False(t, ValuesEqual(&a, &short))
}

func TestValuesEqualNil(t *testing.T) {
	v := settings.IntValue(1)
	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(&v, nil))
	assert.False(t, ValuesEqual(nil, &v))
}

func TestValuesEqualMixedTypes(t *testing.T) {
	s := settings.StringValue("1")
	i := settings.IntValue(1)
	assert.False(t, ValuesEqual(&s, &i), "string never equals number")
}

func TestConfigurationsClassification(t *testing.T) {
	left := map[string]*settings.FieldInfo{
		"Video.Brightness": field("Video.Brightness", "Video", settings.FloatValue(1.0)),
		"Video.Mode":       field("Video.Mode", "Video", settings.StringValue("Borderless")),
		"Video.Detail":     field("Video.Detail", "Video", settings.IntValue(2)),
		"Audio.Volume":     field("Audio.Volume", "Audio", settings.FloatValue(0.8)),
	}
	right := map[string]*settings.FieldInfo{
		"Video.Brightness": field("Video.Brightness", "Video", settings.FloatValue(1.00000000001)),
		"Video.Mode":       field("Video.Mode", "Video", settings.IntValue(1)),
		"Video.Detail":     field("Video.Detail", "Video", settings.IntValue(3)),
		"Audio.Reverb":     field("Audio.Reverb", "Audio", settings.BoolValue(true)),
	}

	diffs := Configurations(left, right)
	require.Len(t, diffs, 4, "values equal within tolerance produce no difference")

	// Sorted by category, then name.
	assert.Equal(t, "Audio.Reverb", diffs[0].Path)
	assert.Equal(t, FieldAdded, diffs[0].Type)
	assert.Nil(t, diffs[0].Left)
	require.NotNil(t, diffs[0].Right)

	assert.Equal(t, "Audio.Volume", diffs[1].Path)
	assert.Equal(t, FieldRemoved, diffs[1].Type)
	assert.Nil(t, diffs[1].Right)

	assert.Equal(t, "Video.Detail", diffs[2].Path)
	assert.Equal(t, ValueChanged, diffs[2].Type)
	assert.Equal(t, settings.IntValue(2), *diffs[2].Left)
	assert.Equal(t, settings.IntValue(3), *diffs[2].Right)

	assert.Equal(t, "Video.Mode", diffs[3].Path)
	assert.Equal(t, TypeChanged, diffs[3].Type)
	assert.Equal(t, settings.TypeString, diffs[3].FieldType, "the left side's type names the field")
}

func TestConfigurationsIdentical(t *testing.T) {
	m := map[string]*settings.FieldInfo{
		"A.B": field("A.B", "A", settings.IntValue(1)),
	}
	assert.Empty(t, Configurations(m, m))
}

func TestSummarize(t *testing.T) {
	diffs := []Difference{
		{Type: ValueChanged},
		{Type: ValueChanged},
		{Type: TypeChanged},
		{Type: FieldAdded},
		{Type: FieldRemoved},
	}
	s := Summarize(diffs)
	assert.Equal(t, Summary{Total: 5, ValueChanged: 2, TypeChanged: 1, FieldAdded: 1, FieldRemoved: 1}, s)
	assert.Zero(t, Summarize(nil).Total)
}

func TestByCategory(t *testing.T) {
	diffs := []Difference{
		{Path: "Audio.Volume", Category: "Audio"},
		{Path: "Video.Detail", Category: "Video"},
		{Path: "Video.Mode", Category: "Video"},
	}
	groups := ByCategory(diffs)
	require.Len(t, groups, 2)
	assert.Equal(t, "Audio", groups[0].Category)
	assert.Len(t, groups[0].Diffs, 1)
	assert.Equal(t, "Video", groups[1].Category)
	assert.Len(t, groups[1].Diffs, 2)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "(not set)", FormatValue(nil, settings.TypeString))

	b := settings.BoolValue(true)
	assert.Equal(t, "Yes", FormatValue(&b, settings.TypeBoolean))
	b = settings.BoolValue(false)
	assert.Equal(t, "No", FormatValue(&b, settings.TypeBoolean))

	a := settings.ArrayValue(settings.FloatValue(1), settings.FloatValue(2), settings.FloatValue(3))
	assert.Equal(t, "[3 items]", FormatValue(&a, settings.TypeArray))

	f := settings.FloatValue(0.333333333)
	assert.Equal(t, "0.333333", FormatValue(&f, settings.TypeFloat))

	long := settings.StringValue(strings.Repeat("a", 60))
	got := FormatValue(&long, settings.TypeString)
	assert.Len(t, []rune(got), 53)
	assert.Contains(t, got, "...")
}

func TestDifferenceTypeString(t *testing.T) {
	assert.Equal(t, "value_changed", ValueChanged.String())
	assert.Equal(t, "field_added", FieldAdded.String())
	assert.Equal(t, "field_removed", FieldRemoved.String())
	assert.Equal(t, "type_changed", TypeChanged.String())
}
