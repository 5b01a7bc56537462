package item

import (
	"fmt"
	"strings"
)

// Item types that never reach the search index.
const (
	TypeAttachment = "attachment"
	TypeNote       = "note"
)

// Item is a read-only record from the remote reference library.
// Key and Type are required by the sync path; everything else lives in the
// open Data map exactly as the library returned it.
type Item struct {
	key     string
	typ     string
	version int
	data    map[string]any
}

// New creates an item. A nil data map is replaced with an empty one.
func New(key, itemType string, version int, data map[string]any) Item {
	if data == nil {
		data = map[string]any{}
	}
	return Item{key: key, typ: itemType, version: version, data: data}
}

// Key returns the library-wide item key. It may be empty for malformed records.
func (it Item) Key() string { return it.key }

// Type returns the item type tag, e.g. "journalArticle".
func (it Item) Type() string { return it.typ }

// Version returns the library version the item was last modified at.
func (it Item) Version() int { return it.version }

// Data returns the raw metadata map. Callers must not mutate it.
func (it Item) Data() map[string]any { return it.data }

// Excluded reports whether items of this type are kept out of the index.
func (it Item) Excluded() bool {
	return it.typ == TypeAttachment || it.typ == TypeNote
}

// Field returns a metadata field as a string, or "" when absent.
func (it Item) Field(name string) string {
	return asString(it.data[name])
}

// Creator is one author, editor or other contributor.
type Creator struct {
	Type      string
	FirstName string
	LastName  string
	Name      string // single-field form, used for institutions
}

// Creators returns the contributor list in library order.
func (it Item) Creators() []Creator {
	raw, ok := it.data["creators"].([]any)
	if !ok {
		return nil
	}
	out := make([]Creator, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Creator{
			Type:      asString(m["creatorType"]),
			FirstName: asString(m["firstName"]),
			LastName:  asString(m["lastName"]),
			Name:      asString(m["name"]),
		})
	}
	return out
}

// Tags returns tag names in library order, skipping blanks.
func (it Item) Tags() []string {
	raw, ok := it.data["tags"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var name string
		switch v := r.(type) {
		case map[string]any:
			name = asString(v["tag"])
		case string:
			name = v
		}
		if strings.TrimSpace(name) != "" {
			out = append(out, name)
		}
	}
	return out
}

// Display renders the creator as "Last, First", or the single name.
func (c Creator) Display() string {
	if c.LastName == "" && c.FirstName == "" {
		return c.Name
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.LastName + ", " + c.FirstName
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
