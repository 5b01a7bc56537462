package collection

import (
	"github.com/kailas-cloud/zotsearch/internal/db"
	"github.com/kailas-cloud/zotsearch/internal/domain/document"
)

// FilterableFields are the metadata fields indexed as TAG and usable in search filters.
var FilterableFields = []string{
	document.FieldItemKey,
	document.FieldItemType,
	document.FieldCitationKey,
	document.FieldDOI,
}

// indexDefinition builds the HNSW/COSINE schema over the collection's hashes.
func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	b := db.NewIndex(r.space.IndexName()).Prefix(r.space.DocPrefix())
	for _, f := range FilterableFields {
		b.Tag(f)
	}
	return b.VectorHNSW("__vector", "vector", r.meta.VectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).Build()
}
