package document

// Metadata field names as stored alongside each indexed document.
const (
	FieldItemKey      = "item_key"
	FieldItemType     = "item_type"
	FieldTitle        = "title"
	FieldDate         = "date"
	FieldDateAdded    = "date_added"
	FieldDateModified = "date_modified"
	FieldCreators     = "creators"
	FieldPublication  = "publication"
	FieldURL          = "url"
	FieldDOI          = "doi"
	FieldTags         = "tags"
	FieldCitationKey  = "citation_key"
)

// MetadataFields lists every metadata field in storage order.
var MetadataFields = []string{
	FieldItemKey, FieldItemType, FieldTitle, FieldDate, FieldDateAdded, FieldDateModified,
	FieldCreators, FieldPublication, FieldURL, FieldDOI, FieldTags, FieldCitationKey,
}

// Metadata is the flat record stored next to a document's vector.
type Metadata struct {
	ItemKey      string `json:"item_key"`
	ItemType     string `json:"item_type"`
	Title        string `json:"title"`
	Date         string `json:"date"`
	DateAdded    string `json:"date_added"`
	DateModified string `json:"date_modified"`
	Creators     string `json:"creators"`
	Publication  string `json:"publication"`
	URL          string `json:"url"`
	DOI          string `json:"doi"`
	Tags         string `json:"tags"`
	CitationKey  string `json:"citation_key"`
}

// Fields renders m as a string map. Every declared field is present.
func (m Metadata) Fields() map[string]string {
	return map[string]string{
		FieldItemKey:      m.ItemKey,
		FieldItemType:     m.ItemType,
		FieldTitle:        m.Title,
		FieldDate:         m.Date,
		FieldDateAdded:    m.DateAdded,
		FieldDateModified: m.DateModified,
		FieldCreators:     m.Creators,
		FieldPublication:  m.Publication,
		FieldURL:          m.URL,
		FieldDOI:          m.DOI,
		FieldTags:         m.Tags,
		FieldCitationKey:  m.CitationKey,
	}
}

// MetadataFromFields is the inverse of Fields. Unknown keys are ignored.
func MetadataFromFields(f map[string]string) Metadata {
	return Metadata{
		ItemKey:      f[FieldItemKey],
		ItemType:     f[FieldItemType],
		Title:        f[FieldTitle],
		Date:         f[FieldDate],
		DateAdded:    f[FieldDateAdded],
		DateModified: f[FieldDateModified],
		Creators:     f[FieldCreators],
		Publication:  f[FieldPublication],
		URL:          f[FieldURL],
		DOI:          f[FieldDOI],
		Tags:         f[FieldTags],
		CitationKey:  f[FieldCitationKey],
	}
}

// Document is the unit stored in the search index, keyed by item key.
type Document struct {
	id       string
	text     string
	metadata Metadata
}

// Reconstruct creates a Document from stored parts without rebuilding it.
func Reconstruct(id, text string, metadata Metadata) Document {
	return Document{id: id, text: text, metadata: metadata}
}

// ID returns the item key the document is stored under.
func (d Document) ID() string { return d.id }

// Text returns the searchable text.
func (d Document) Text() string { return d.text }

// Metadata returns the metadata record.
func (d Document) Metadata() Metadata { return d.metadata }

// Hit is a document returned by a nearest-neighbour query.
type Hit struct {
	Document Document
	Distance float64 // cosine distance, 0 = identical
}
