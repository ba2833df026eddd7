package publication

import (
	"strings"

	"github.com/aimlgroup/pubgen/internal/bibtex"
)

// authorSeparator joins author names in a BibTeX author field.
const authorSeparator = " and "

// SplitAuthors splits a BibTeX author field into trimmed, non-empty names.
// Only the literal " and " separates names.
func SplitAuthors(field string) []string {
	authors := []string{}
	if field == "" {
		return authors
	}

	field = strings.ReplaceAll(field, "\n", " ")
	for _, name := range strings.Split(field, authorSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}

// ExtractTopics reads the keywords field (or topic, when keywords is empty)
// and returns the raw tokens alongside their slug forms. Both slices have
// the same length.
func ExtractTopics(e bibtex.Entry) (raw, normalized []string) {
	raw, normalized = []string{}, []string{}

	field := e.Get("keywords")
	if field == "" {
		field = e.Get("topic")
	}
	if field == "" {
		return raw, normalized
	}

	field = strings.ReplaceAll(field, ";", ",")
	for _, token := range strings.Split(field, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		raw = append(raw, token)
		normalized = append(normalized, Slug(token))
	}
	return raw, normalized
}

// Slug lowercases a topic and replaces spaces with hyphens.
func Slug(topic string) string {
	return strings.ReplaceAll(strings.ToLower(topic), " ", "-")
}

// OtherLabel is the type label for entry types without a mapping.
const OtherLabel = "Other"

var typeLabels = map[string]string{
	"article":       "Journal article",
	"inproceedings": "Conference paper",
	"proceedings":   "Edited volume",
	"incollection":  "Workshop paper",
	"phdthesis":     "PhD thesis",
	"mastersthesis": "Master's thesis",
	"techreport":    "Technical report",
	"misc":          "Preprint",
	"unpublished":   "Preprint",
	"manual":        "Technical report",
	"book":          "Book",
}

// TypeLabel returns the display label for a BibTeX entry type.
func TypeLabel(entryType string) string {
	if label, ok := typeLabels[strings.ToLower(entryType)]; ok {
		return label
	}
	return OtherLabel
}

// papersPrefix is the on-disk form of links into the papers directory.
const papersPrefix = "./papers"

// NormalizeURL trims a URL and rewrites "./papers..." to the site path "/papers...".
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, papersPrefix) {
		return "/papers" + strings.TrimPrefix(url, papersPrefix)
	}
	return url
}
