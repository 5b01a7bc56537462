package document

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

var htmlTag = regexp.MustCompile(`<[^>]+>`)

var citationKeyPrefixes = []string{"citation key:", "citationkey:"}

// Build maps a library item to its indexed form. It never fails: missing
// fields become empty strings. Callers skip documents whose Text is blank.
func Build(it item.Item) Document {
	creators := FormatCreators(it.Creators())
	tags := strings.Join(it.Tags(), " ")

	text := joinNonEmpty(
		it.Field("title"),
		creators,
		it.Field("abstractNote"),
		it.Field("publicationTitle"),
		tags,
		StripHTML(it.Field("note")),
	)

	return Document{
		id:   it.Key(),
		text: text,
		metadata: Metadata{
			ItemKey:      it.Key(),
			ItemType:     it.Type(),
			Title:        it.Field("title"),
			Date:         it.Field("date"),
			DateAdded:    it.Field("dateAdded"),
			DateModified: it.Field("dateModified"),
			Creators:     creators,
			Publication:  it.Field("publicationTitle"),
			URL:          it.Field("url"),
			DOI:          it.Field("DOI"),
			Tags:         tags,
			CitationKey:  CitationKey(it.Field("extra")),
		},
	}
}

// FormatCreators renders creators as "Last, First; Name; ...".
func FormatCreators(creators []item.Creator) string {
	names := make([]string, 0, len(creators))
	for _, c := range creators {
		if d := strings.TrimSpace(c.Display()); d != "" {
			names = append(names, d)
		}
	}
	return strings.Join(names, "; ")
}

// CitationKey returns the value of the first "Citation Key:" line in extra,
// matched case-insensitively, or "" when there is none.
func CitationKey(extra string) string {
	for _, line := range strings.Split(extra, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		for _, p := range citationKeyPrefixes {
			if strings.HasPrefix(lower, p) {
				_, value, _ := strings.Cut(line, ":")
				return strings.TrimSpace(value)
			}
		}
	}
	return ""
}

// StripHTML removes markup tags and surrounding whitespace.
func StripHTML(s string) string {
	return strings.TrimSpace(htmlTag.ReplaceAllString(s, ""))
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
