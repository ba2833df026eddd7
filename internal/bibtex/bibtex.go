// Package bibtex parses BibTeX databases into ordered entries.
package bibtex

import (
	"fmt"
	"strings"
)

// Entry is a single record from a .bib file.
type Entry struct {
	Type   string            // Lowercased entry type (article, phdthesis, ...)
	Key    string            // Citation key, case preserved
	Fields map[string]string // Field values keyed by lowercased field name
	Line   int               // Line of the opening '@'
}

// Get returns the value of a field, or "" if the entry does not have it.
// Field names are matched case-insensitively.
func (e Entry) Get(name string) string {
	if v, ok := e.Fields[strings.ToLower(name)]; ok {
		return v
	}
	// Entries built by hand may carry mixed-case field names.
	for k, v := range e.Fields {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// ParseError reports malformed BibTeX input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bibtex: line %d: %s", e.Line, e.Msg)
}

// monthMacros are the predefined @string abbreviations every BibTeX style knows.
var monthMacros = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}
