// Package publication turns bibliography entries into the records the
// website renders.
package publication

import (
	"github.com/aimlgroup/pubgen/internal/bibtex"
	"github.com/aimlgroup/pubgen/internal/logger"
)

// Record is one publication as served to the site scripts.
// Field order here is the key order of the JSON output.
type Record struct {
	// Identity
	Cite string `json:"cite"` // Citation key, not checked for uniqueness

	// Verbatim metadata, "" when the entry lacks the field
	Title        string   `json:"title"`
	Authors      []string `json:"authors"`
	Year         string   `json:"year"`
	YearDisplay  string   `json:"yearDisplay"`
	Journal      string   `json:"journal"`
	Booktitle    string   `json:"booktitle"`
	Publisher    string   `json:"publisher"`
	Howpublished string   `json:"howpublished"`
	Institution  string   `json:"institution"`
	Organization string   `json:"organization"`
	School       string   `json:"school"`
	Series       string   `json:"series"`
	Note         string   `json:"note"`

	// Links
	URL string `json:"url"` // Normalized, see NormalizeURL
	DOI string `json:"doi"`

	// Derived presentation fields
	TypeLabel        string   `json:"typeLabel"`
	Image            string   `json:"image"`
	Topics           []string `json:"topics"`
	TopicsNormalized []string `json:"topicsNormalized"`

	// Position is the zero-based index of the entry in the .bib file.
	Position int `json:"position"`
}

// Builder converts parsed entries into records.
type Builder struct {
	Images *ImageResolver
	Log    *logger.Logger
}

// NewBuilder returns a builder using images for image resolution.
func NewBuilder(images *ImageResolver, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{Images: images, Log: log}
}

// Build returns one record per entry, in entry order.
func (b *Builder) Build(entries []bibtex.Entry) []Record {
	records := make([]Record, 0, len(entries))
	for i, e := range entries {
		records = append(records, b.Record(e, i))
	}
	return records
}

// Record builds the record for a single entry at the given position.
func (b *Builder) Record(e bibtex.Entry, position int) Record {
	log := b.Log.With("cite", e.Key)
	topics, normalized := ExtractTopics(e)
	image, source := b.Images.Resolve(e)

	label := TypeLabel(e.Type)
	if label == OtherLabel {
		log.Warn("unrecognized entry type", "type", e.Type, "label", label)
	}
	log.Debug("built record", "type", e.Type, "image", image, "image_source", source)

	return Record{
		Cite:             e.Key,
		Title:            e.Get("title"),
		Authors:          SplitAuthors(e.Get("author")),
		Year:             e.Get("year"),
		YearDisplay:      e.Get("year"),
		Journal:          e.Get("journal"),
		Booktitle:        e.Get("booktitle"),
		Publisher:        e.Get("publisher"),
		Howpublished:     e.Get("howpublished"),
		Institution:      e.Get("institution"),
		Organization:     e.Get("organization"),
		School:           e.Get("school"),
		Series:           e.Get("series"),
		Note:             e.Get("note"),
		URL:              NormalizeURL(e.Get("url")),
		DOI:              e.Get("doi"),
		TypeLabel:        label,
		Image:            image,
		Topics:           topics,
		TopicsNormalized: normalized,
		Position:         position,
	}
}
