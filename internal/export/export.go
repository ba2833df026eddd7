// Package export writes publication records in the formats the website loads.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/aimlgroup/pubgen/internal/publication"
)

// DefaultScriptGlobal is the variable the site scripts read embedded data from.
const DefaultScriptGlobal = "window.AIML_PUBLICATIONS"

// MarshalJSON encodes records as a 2-space indented JSON array followed by a newline.
// Non-ASCII and HTML characters are written as-is.
func MarshalJSON(records []publication.Record) ([]byte, error) {
	data, err := encode(records, "  ")
	if err != nil {
		return nil, err
	}
	return rewrite(data, false), nil
}

// MarshalScript encodes records as a single assignment statement:
//
//	<global> = [...];
//
// The JSON is on one line with ", " and ": " separators, and the
// statement ends with a newline.
func MarshalScript(global string, records []publication.Record) ([]byte, error) {
	data, err := encode(records, "")
	if err != nil {
		return nil, err
	}
	data = rewrite(data, true)

	var b bytes.Buffer
	b.Grow(len(global) + len(data) + 5)
	b.WriteString(global)
	b.WriteString(" = ")
	b.Write(bytes.TrimSuffix(data, []byte("\n")))
	b.WriteString(";\n")
	return b.Bytes(), nil
}

// WriteJSON writes the indented JSON array to path, creating its directory.
func WriteJSON(path string, records []publication.Record) error {
	data, err := MarshalJSON(records)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteScript writes the script-embedded form to path, creating its directory.
func WriteScript(path, global string, records []publication.Record) error {
	data, err := MarshalScript(global, records)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func encode(records []publication.Record, indent string) ([]byte, error) {
	if records == nil {
		records = []publication.Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding publications: %w", err)
	}
	return buf.Bytes(), nil
}

// rewrite unescapes U+2028 and U+2029, which encoding/json always
// escapes. With spaced set, a space follows every ',' and ':' outside
// string literals.
func rewrite(data []byte, spaced bool) []byte {
	out := make([]byte, 0, len(data)+len(data)/8)
	inString := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case inString && c == '\\' && i+1 < len(data):
			if r, ok := lineSeparator(data[i:]); ok {
				out = utf8.AppendRune(out, r)
				i += 5
				continue
			}
			out = append(out, c, data[i+1])
			i++
		case c == '"':
			inString = !inString
			out = append(out, c)
		case !inString && spaced && (c == ',' || c == ':'):
			out = append(out, c, ' ')
		default:
			out = append(out, c)
		}
	}
	return out
}

// lineSeparator reports whether b starts with the escape for U+2028 or U+2029.
func lineSeparator(b []byte) (rune, bool) {
	if len(b) < 6 {
		return 0, false
	}
	switch string(b[:6]) {
	case `\u2028`:
		return '\u2028', true
	case `\u2029`:
		return '\u2029', true
	}
	return 0, false
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
