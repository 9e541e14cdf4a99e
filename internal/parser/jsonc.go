// Package parser implements the two configuration codecs: a JSON dialect
// with // line comments and shadow description keys, and a commented INI
// dialect. Both parsers build a settings.ConfigData and both writers patch
// only the source lines whose field value changed, leaving every other byte
// of the original file untouched.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/simrig-tools/simconf/internal/settings"
)

var (
	// "Field Name": — bare key at the start of a member line.
	jsonKeyRe = regexp.MustCompile(`"([^"]+)":`)

	// Description fragment introduced by #: inside a trailing comment,
	// optionally quoted, with escaped quotes allowed.
	inlineDescRe = regexp.MustCompile(`#[:\s]*["']?((?:\\.|[^"'])*)["']?`)

	// "Field Name#": "description" — a shadow key carrying the description
	// for "Field Name". Never a real schema member.
	shadowDescRe = regexp.MustCompile(`"([^"]+)#":\s*"((?:\\.|[^"\\])*)"`)

	// A line consisting solely of a shadow description member.
	shadowLineRe = regexp.MustCompile(`^\s*"[^"]+#":\s*"(?:\\.|[^"\\])*",?\s*$`)

	// Trailing comma left behind once comment and shadow lines are gone.
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

	// "Field Name": value — the write-back line match. The value token is
	// trimmed of any trailing comment before being replaced.
	jsonFieldLineRe = regexp.MustCompile(`"([^"]+)":\s*([^,}]+)`)
)

// JSONParser parses and writes the JSON-with-comments settings dialect.
type JSONParser struct {
	log zerolog.Logger
}

// NewJSONParser returns a parser logging through the given logger.
func NewJSONParser(log zerolog.Logger) *JSONParser {
	return &JSONParser{log: log.With().Str("component", "json_parser").Logger()}
}

// ParseFile reads and parses a settings file.
//
// It returns ErrNotFound when the file does not exist and a *ParseError when
// the comment-stripped text is not valid JSON; in the latter case the cleaned
// text has been persisted to a debug sibling file for manual inspection.
func (p *JSONParser) ParseFile(path string) (*settings.ConfigData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	lines := splitLines(string(b))
	data := settings.NewConfigData()
	data.SetRawLines(lines)

	for name, desc := range p.extractDescriptions(lines) {
		data.SetDescription(name, desc)
	}

	clean := p.stripComments(lines)

	if !gjson.Valid(clean) {
		debugFile := filepath.Join(filepath.Dir(path), "debug_cleaned_"+filepath.Base(path))
		if werr := os.WriteFile(debugFile, []byte(clean), 0o644); werr != nil {
			p.log.Warn().Err(werr).Str("file", debugFile).Msg("failed to save cleaned JSON for debugging")
			debugFile = ""
		} else {
			p.log.Error().Str("file", debugFile).Msg("JSON parsing failed, cleaned JSON saved for inspection")
		}
		line, col, serr := locateJSONError(clean)
		return nil, &ParseError{Path: path, Line: line, Column: col, DebugFile: debugFile, Err: serr}
	}

	for _, f := range p.flatten(gjson.Parse(clean), "", data) {
		data.AddField(f)
	}

	p.log.Info().Int("fields", data.Len()).Str("file", path).Msg("parsed settings file")
	return data, nil
}

// extractDescriptions scans the raw lines for both description conventions.
// Inline descriptions are matched before standalone shadow keys on each line;
// across lines the last match for a name wins.
func (p *JSONParser) extractDescriptions(lines []string) map[string]string {
	descs := make(map[string]string)

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		// Inline form: "Field": value, // comment #: "description"
		if strings.Contains(line, "//") && strings.Contains(line, "#") {
			if fm := jsonKeyRe.FindStringSubmatch(line); fm != nil {
				if dm := inlineDescRe.FindStringSubmatch(line); dm != nil {
					descs[fm[1]] = unescapeDescription(strings.TrimSpace(dm[1]))
				}
			}
		}

		// Standalone form: "Field#": "description"
		if strings.Contains(line, `#":`) && !strings.Contains(line, "//") {
			if m := shadowDescRe.FindStringSubmatch(line); m != nil {
				descs[m[1]] = unescapeDescription(m[2])
			}
		}
	}

	return descs
}

// stripComments produces parseable JSON from the raw lines: trailing //
// comments are cut (string-aware), shadow description lines are dropped, and
// trailing commas exposed by the removals are repaired. Line structure is
// kept so decode errors still map to source lines.
func (p *JSONParser) stripComments(lines []string) string {
	var sb strings.Builder

	for _, raw := range lines {
		body, eol := splitEOL(raw)

		if strings.Contains(body, "//") {
			if pos := indexUnquoted(body, "//"); pos >= 0 {
				body = strings.TrimRight(body[:pos], " \t")
			}
		}

		// Shadow description members are not part of the real schema and
		// must never reach the JSON decoder.
		if shadowLineRe.MatchString(body) {
			body = ""
		}

		sb.WriteString(body)
		sb.WriteString(eol)
	}

	return trailingCommaRe.ReplaceAllString(sb.String(), "${1}")
}

// flatten walks the parsed document in member order and produces the flat
// field table. Fields found inside a nested object are tagged with the
// enclosing object's key at every unwinding step, so the top-level grouping
// key wins as the category.
func (p *JSONParser) flatten(obj gjson.Result, parentPath string, data *settings.ConfigData) []*settings.FieldInfo {
	var fields []*settings.FieldInfo

	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		currentPath := k
		if parentPath != "" {
			currentPath = parentPath + "." + k
		}

		if value.IsObject() {
			nested := p.flatten(value, currentPath, data)
			for _, nf := range nested {
				nf.Category = k
			}
			fields = append(fields, nested...)
			return true
		}

		v := valueFromResult(value)
		category := parentPath
		if category == "" {
			category = "General"
		}
		fields = append(fields, &settings.FieldInfo{
			Path:        currentPath,
			Value:       v,
			Original:    v,
			Description: data.Description(k, currentPath),
			Type:        v.Type,
			Category:    category,
		})
		return true
	})

	return fields
}

// WriteFile writes the document back to path, patching only the lines whose
// field value changed since parse time.
//
// The line match is by bare trailing key name, not full dotted path: two
// fields sharing a leaf name across sections can collide. That ambiguity is
// part of the dialect's line-oriented contract.
func (p *JSONParser) WriteFile(data *settings.ConfigData, path string) error {
	var sb strings.Builder
	patched := 0

	for _, raw := range data.RawLines() {
		line, changed := p.patchLine(raw, data)
		if changed {
			patched++
		}
		sb.WriteString(line)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return classifyWriteError(path, err)
	}

	p.log.Info().Int("patched", patched).Str("file", path).Msg("wrote settings file")
	return nil
}

// patchLine replaces the value token of a dirty field, preserving everything
// else on the line including a trailing comment.
func (p *JSONParser) patchLine(line string, data *settings.ConfigData) (string, bool) {
	m := jsonFieldLineRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line, false
	}
	key := line[m[2]:m[3]]

	var field *settings.FieldInfo
	for _, fp := range data.Paths() {
		if strings.HasSuffix(fp, key) {
			field, _ = data.Field(fp)
			break
		}
	}
	if field == nil || !field.Dirty() {
		return line, false
	}

	start, end := m[4], m[5]
	token := line[start:end]
	if pos := indexUnquoted(token, "//"); pos >= 0 {
		token = token[:pos]
	}
	token = strings.TrimRight(token, " \t\r\n")
	end = start + len(token)

	return line[:start] + formatJSONValue(field.Value, field.Type) + line[end:], true
}

// formatJSONValue renders a value as a JSON literal for line patching.
func formatJSONValue(v settings.Value, t settings.Type) string {
	switch t {
	case settings.TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case settings.TypeInteger, settings.TypeFloat:
		return v.String()
	case settings.TypeArray, settings.TypeObject:
		return v.JSON()
	default:
		b, err := json.Marshal(v.String())
		if err != nil {
			return strconv.Quote(v.String())
		}
		return string(b)
	}
}

// valueFromResult converts a gjson result into a tagged Value. Number
// literals without a fraction or exponent become integers; null becomes the
// empty string.
func valueFromResult(r gjson.Result) settings.Value {
	switch {
	case r.Type == gjson.True:
		return settings.BoolValue(true)
	case r.Type == gjson.False:
		return settings.BoolValue(false)
	case r.Type == gjson.Number:
		if !strings.ContainsAny(r.Raw, ".eE") {
			if i, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
				return settings.IntValue(i)
			}
		}
		return settings.FloatValue(r.Float())
	case r.IsArray():
		var elems []settings.Value
		r.ForEach(func(_, e gjson.Result) bool {
			elems = append(elems, valueFromResult(e))
			return true
		})
		return settings.ArrayValue(elems...)
	case r.IsObject():
		return settings.ObjectValue(r.Raw)
	case r.Type == gjson.String:
		return settings.StringValue(r.Str)
	default:
		return settings.StringValue("")
	}
}

// unescapeDescription reverses the escape sequences allowed inside
// description text.
func unescapeDescription(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\'`, `'`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// indexUnquoted returns the index of the first occurrence of sep outside a
// quoted string, honoring backslash escapes, or -1.
func indexUnquoted(s, sep string) int {
	inString := false
	escapeNext := false
	for i := 0; i < len(s); i++ {
		if escapeNext {
			escapeNext = false
			continue
		}
		switch s[i] {
		case '\\':
			escapeNext = true
		case '"':
			inString = !inString
		default:
			if !inString && strings.HasPrefix(s[i:], sep) {
				return i
			}
		}
	}
	return -1
}

// splitLines splits file content into lines with their terminators kept, so
// write-back can reproduce the original byte-for-byte.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// splitEOL separates a line's body from its terminator.
func splitEOL(line string) (body, eol string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

// locateJSONError extracts a line and column from the standard decoder's
// syntax error, for diagnostics only.
func locateJSONError(clean string) (line, col int, err error) {
	var v any
	err = json.Unmarshal([]byte(clean), &v)
	if err == nil {
		err = errors.New("invalid JSON")
		return 0, 0, err
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col = 1, 1
		for i := int64(0); i < syn.Offset-1 && i < int64(len(clean)); i++ {
			if clean[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		return line, col, err
	}
	return 0, 0, err
}
