package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/simrig-tools/simconf/internal/settings"
)

var (
	sectionRe = regexp.MustCompile(`^\[([^\]]+)\]`)
	iniKeyRe  = regexp.MustCompile(`^([^=]+)=`)
)

// INIParser parses and writes the commented-INI configuration dialect:
// [Section] headers, key=value pairs, // inline comments, and a small value
// coercion grammar (boolean words, numbers, parenthesized float tuples).
type INIParser struct {
	log zerolog.Logger
}

// NewINIParser returns a parser logging through the given logger.
func NewINIParser(log zerolog.Logger) *INIParser {
	return &INIParser{log: log.With().Str("component", "ini_parser").Logger()}
}

// ParseFile reads and parses an INI file. It returns ErrNotFound when the
// file does not exist.
func (p *INIParser) ParseFile(path string) (*settings.ConfigData, error) {
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

	currentSection := ""
	for i, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			currentSection = m[1]
			continue
		}

		if !strings.Contains(line, "=") || currentSection == "" {
			continue
		}

		comment := ""
		if pos := indexUnquoted(line, "//"); pos >= 0 {
			comment = strings.TrimSpace(line[pos+2:])
			line = strings.TrimSpace(line[:pos])
		}

		key, rest, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		value := coerceINIValue(strings.TrimSpace(rest))

		data.AddField(&settings.FieldInfo{
			Path:        currentSection + "." + key,
			Value:       value,
			Original:    value,
			Description: comment,
			Type:        value.Type,
			Category:    currentSection,
			Line:        i,
			SourceLine:  raw,
		})
	}

	p.log.Info().Int("fields", data.Len()).Str("file", path).Msg("parsed INI file")
	return data, nil
}

// coerceINIValue applies the dialect's value grammar, in priority order:
// boolean words, integer, float, parenthesized tuple, plain string.
func coerceINIValue(s string) settings.Value {
	switch strings.ToLower(s) {
	case "true", "on", "yes", "1":
		return settings.BoolValue(true)
	case "false", "off", "no", "0":
		return settings.BoolValue(false)
	}

	if !strings.Contains(s, ".") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return settings.IntValue(i)
		}
	} else if f, err := strconv.ParseFloat(s, 64); err == nil {
		return settings.FloatValue(f)
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		// Tuple format like (0.609, 0.343, 0.457, 60.000, 0.004).
		parts := strings.Split(s[1:len(s)-1], ",")
		elems := make([]settings.Value, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if f, err := strconv.ParseFloat(part, 64); err == nil {
				elems = append(elems, settings.FloatValue(f))
			} else {
				elems = append(elems, settings.StringValue(part))
			}
		}
		return settings.ArrayValue(elems...)
	}

	return settings.StringValue(s)
}

// WriteFile writes the document back to path. Blank lines, comment lines and
// section headers pass through untouched; a key=value line is rewritten only
// when its field's value changed since parse time, keeping the original
// inline comment. The same bare-key collision caveat applies as for the JSON
// writer.
func (p *INIParser) WriteFile(data *settings.ConfigData, path string) error {
	var sb strings.Builder
	patched := 0

	for _, raw := range data.RawLines() {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "[") {
			sb.WriteString(raw)
			continue
		}

		km := iniKeyRe.FindStringSubmatch(line)
		if km == nil {
			sb.WriteString(raw)
			continue
		}
		key := strings.TrimSpace(km[1])

		var field *settings.FieldInfo
		for _, fp := range data.Paths() {
			if strings.HasSuffix(fp, "."+key) {
				field, _ = data.Field(fp)
				break
			}
		}
		if field == nil || !field.Dirty() {
			sb.WriteString(raw)
			continue
		}

		newValue := formatINIValue(field.Value, field.Type)
		if idx := strings.Index(raw, "//"); idx >= 0 {
			sb.WriteString(key + "=" + newValue + " //" + raw[idx+2:])
		} else {
			sb.WriteString(key + "=" + newValue + "\n")
		}
		patched++
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return classifyWriteError(path, err)
	}

	p.log.Info().Int("patched", patched).Str("file", path).Msg("wrote INI file")
	return nil
}

// formatINIValue renders a value in the dialect's literal syntax: booleans as
// 1/0, tuples as parenthesized floats with three decimal places, everything
// else as its natural text.
func formatINIValue(v settings.Value, t settings.Type) string {
	switch t {
	case settings.TypeBoolean:
		if v.Bool {
			return "1"
		}
		return "0"
	case settings.TypeArray:
		// The model coerces free-form input on an array field to its text
		// form; only a real array payload gets tuple formatting.
		if v.Type != settings.TypeArray {
			return v.String()
		}
		parts := make([]string, 0, len(v.List))
		for _, e := range v.List {
			if e.Type == settings.TypeFloat {
				parts = append(parts, strconv.FormatFloat(e.Num, 'f', 3, 64))
			} else {
				parts = append(parts, e.String())
			}
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return v.String()
	}
}
