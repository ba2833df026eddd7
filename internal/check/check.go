// Package check finds problems in a bibliography that would produce
// confusing output on the website.
package check

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/aimlgroup/pubgen/internal/bibtex"
	"github.com/aimlgroup/pubgen/internal/publication"
)

// Issue types.
const (
	MissingCite   = "missing_cite"
	DuplicateCite = "duplicate_cite"
	DuplicateDOI  = "duplicate_doi"
	UnknownType   = "unknown_type"
	MissingImage  = "missing_image"
)

// Issue represents a single issue found during check.
type Issue struct {
	Type     string   `json:"type"`
	ID       string   `json:"id,omitempty"`
	IDs      []string `json:"ids,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	Line     int      `json:"line,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Result is the outcome of checking a bibliography.
type Result struct {
	Status  string  `json:"status"` // "ok" or "issues"
	Entries int     `json:"entries"`
	Issues  []Issue `json:"issues"`
}

// OK reports whether no issues were found.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Run checks entries. Explicit image fields pointing under ./images/ are
// verified against the resolver's directory.
func Run(entries []bibtex.Entry, images *publication.ImageResolver) Result {
	issues := []Issue{}

	keyLines := make(map[string][]int)
	var keyOrder []string
	doiKeys := make(map[string][]string)
	var doiOrder []string

	for _, e := range entries {
		key := strings.TrimSpace(e.Key)
		if key == "" {
			issues = append(issues, Issue{
				Type:   MissingCite,
				Line:   e.Line,
				Reason: fmt.Sprintf("@%s entry has no citation key", e.Type),
			})
		} else {
			if _, seen := keyLines[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			keyLines[key] = append(keyLines[key], e.Line)
		}

		if doi := normalizeDOI(e.Get("doi")); doi != "" {
			if _, seen := doiKeys[doi]; !seen {
				doiOrder = append(doiOrder, doi)
			}
			doiKeys[doi] = append(doiKeys[doi], key)
		}

		if publication.TypeLabel(e.Type) == publication.OtherLabel {
			issues = append(issues, Issue{
				Type:   UnknownType,
				ID:     key,
				Line:   e.Line,
				Reason: fmt.Sprintf("entry type %q is shown as %q", e.Type, publication.OtherLabel),
			})
		}

		if images != nil && images.Dir != nil {
			if issue, ok := checkImage(e, images); ok {
				issues = append(issues, issue)
			}
		}
	}

	for _, key := range keyOrder {
		lines := keyLines[key]
		if len(lines) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Type:   DuplicateCite,
			ID:     key,
			Line:   lines[0],
			Reason: fmt.Sprintf("used by %d entries (lines %s)", len(lines), joinInts(lines)),
		})
	}

	for _, doi := range doiOrder {
		keys := doiKeys[doi]
		if len(keys) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Type: DuplicateDOI,
			IDs:  keys,
			DOI:  doi,
		})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Type != issues[j].Type {
			return issues[i].Type < issues[j].Type
		}
		if issues[i].ID != issues[j].ID {
			return issues[i].ID < issues[j].ID
		}
		return issues[i].Line < issues[j].Line
	})

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}
	return Result{Status: status, Entries: len(entries), Issues: issues}
}

// checkImage reports an explicit ./images/... reference to a file that is not there.
func checkImage(e bibtex.Entry, images *publication.ImageResolver) (Issue, bool) {
	path, source := images.Resolve(e)
	if source != publication.ImageFromField || !strings.HasPrefix(path, publication.ImagesURLPrefix) {
		return Issue{}, false
	}

	name := strings.TrimPrefix(path, publication.ImagesURLPrefix)
	if _, err := fs.Stat(images.Dir, name); err == nil {
		return Issue{}, false
	}
	return Issue{
		Type:     MissingImage,
		ID:       strings.TrimSpace(e.Key),
		Line:     e.Line,
		Expected: path,
	}, true
}

// normalizeDOI normalizes a DOI for comparison.
// Removes common prefixes like "https://doi.org/" and lowercases.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
