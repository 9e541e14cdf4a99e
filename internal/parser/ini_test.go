package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simrig-tools/simconf/internal/logging"
	"github.com/simrig-tools/simconf/internal/settings"
)

const sampleINI = `// Renderer configuration
[DISPLAY]
Resolution=1920x1080 // current desktop mode
Brightness=1.5
VSync=on
MAA=0

[EFFECTS]
Glare=(0.609, 0.343, 0.457)
ProfileName=TrackIR
`

func writeINI(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Config_DX11.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestINIParser_ParseFile(t *testing.T) {
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(writeINI(t, sampleINI))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DISPLAY.Resolution",
		"DISPLAY.Brightness",
		"DISPLAY.VSync",
		"DISPLAY.MAA",
		"EFFECTS.Glare",
		"EFFECTS.ProfileName",
	}, data.Paths())

	res, ok := data.Field("DISPLAY.Resolution")
	require.True(t, ok)
	assert.Equal(t, settings.TypeString, res.Type)
	assert.Equal(t, "1920x1080", res.Value.Str)
	assert.Equal(t, "current desktop mode", res.Description, "inline comment becomes the description")
	assert.Equal(t, "DISPLAY", res.Category)

	bright, _ := data.Field("DISPLAY.Brightness")
	assert.Equal(t, settings.TypeFloat, bright.Type)
	assert.InDelta(t, 1.5, bright.Value.Num, 1e-12)

	glare, _ := data.Field("EFFECTS.Glare")
	require.Equal(t, settings.TypeArray, glare.Type)
	require.Len(t, glare.Value.List, 3)
	assert.InDelta(t, 0.609, glare.Value.List[0].Num, 1e-12)
	assert.InDelta(t, 0.457, glare.Value.List[2].Num, 1e-12)
}

func TestINIParser_BooleanWords(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{"true", true}, {"on", true}, {"yes", true}, {"1", true},
		{"false", false}, {"off", false}, {"no", false}, {"0", false},
		{"TRUE", true}, {"Off", false},
	}
	for _, tc := range cases {
		v := coerceINIValue(tc.raw)
		assert.Equal(t, settings.TypeBoolean, v.Type, "coerce %q", tc.raw)
		assert.Equal(t, tc.want, v.Bool, "coerce %q", tc.raw)
	}
}

func TestINIParser_CoercionGrammar(t *testing.T) {
	assert.Equal(t, settings.IntValue(42), coerceINIValue("42"))
	assert.Equal(t, settings.IntValue(-7), coerceINIValue("-7"))
	assert.Equal(t, settings.TypeFloat, coerceINIValue("3.14").Type)
	assert.Equal(t, settings.TypeString, coerceINIValue("1920x1080").Type)
	assert.Equal(t, settings.TypeString, coerceINIValue("1.2.3").Type, "multiple dots are not a float")

	mixed := coerceINIValue("(1.0, high)")
	require.Equal(t, settings.TypeArray, mixed.Type)
	require.Len(t, mixed.List, 2)
	assert.Equal(t, settings.TypeFloat, mixed.List[0].Type)
	assert.Equal(t, "high", mixed.List[1].Str, "non-numeric tuple parts stay strings")
}

func TestINIParser_KeyValueOutsideSectionIgnored(t *testing.T) {
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(writeINI(t, "Orphan=1\n[S]\nKey=2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"S.Key"}, data.Paths())
}

func TestINIParser_RoundTripUnchanged(t *testing.T) {
	path := writeINI(t, sampleINI)
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(path)
	require.NoError(t, err)

	require.NoError(t, p.WriteFile(data, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleINI, string(got))
}

func TestINIParser_SelectivePatch(t *testing.T) {
	path := writeINI(t, sampleINI)
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(path)
	require.NoError(t, err)

	res, _ := data.Field("DISPLAY.Resolution")
	res.Value = settings.StringValue("2560x1440")
	vsync, _ := data.Field("DISPLAY.VSync")
	vsync.Value = settings.BoolValue(false)

	require.NoError(t, p.WriteFile(data, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(got), "\n")

	assert.Equal(t, "// Renderer configuration", lines[0])
	assert.Equal(t, "Resolution=2560x1440 // current desktop mode", lines[2], "inline comment survives the rewrite")
	assert.Equal(t, "Brightness=1.5", lines[3])
	assert.Equal(t, "VSync=0", lines[4], "booleans write back as 1/0")
	assert.Equal(t, "MAA=0", lines[5])
}

func TestINIParser_TuplePatchThreeDecimals(t *testing.T) {
	path := writeINI(t, "[EFFECTS]\nGlare=(0.609, 0.343, 0.457)\n")
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(path)
	require.NoError(t, err)

	f, _ := data.Field("EFFECTS.Glare")
	f.Value = settings.ArrayValue(
		settings.FloatValue(0.7),
		settings.FloatValue(0.343),
		settings.FloatValue(0.457),
	)

	require.NoError(t, p.WriteFile(data, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[EFFECTS]\nGlare=(0.700, 0.343, 0.457)\n", string(got))
}

func TestINIParser_TuplePatchFromText(t *testing.T) {
	// An array field whose new value arrived as plain text writes that text,
	// not an empty tuple.
	path := writeINI(t, "[EFFECTS]\nGlare=(0.609, 0.343, 0.457)\n")
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(path)
	require.NoError(t, err)

	f, _ := data.Field("EFFECTS.Glare")
	f.Value = settings.StringValue("(0.700, 0.343, 0.457)")

	require.NoError(t, p.WriteFile(data, path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[EFFECTS]\nGlare=(0.700, 0.343, 0.457)\n", string(got))
}

func TestINIParser_BareKeyCollision(t *testing.T) {
	// Same caveat as the JSON writer: lines resolve by bare key, so the
	// first section's field in document order claims both Quality lines.
	content := "[A]\nQuality=1\n[B]\nQuality=5\n"
	path := writeINI(t, content)
	p := NewINIParser(logging.Nop())
	data, err := p.ParseFile(path)
	require.NoError(t, err)

	fb, _ := data.Field("B.Quality")
	fb.Value = settings.IntValue(6)
	require.NoError(t, p.WriteFile(data, path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got), "the clean A.Quality shadows the dirty B.Quality")

	fa, _ := data.Field("A.Quality")
	fa.Value = settings.IntValue(2)
	require.NoError(t, p.WriteFile(data, path))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[A]\nQuality=2\n[B]\nQuality=2\n", string(got))
}

func TestINIParser_NotFound(t *testing.T) {
	p := NewINIParser(logging.Nop())
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.ini"))
	assert.ErrorIs(t, err, ErrNotFound)
}
