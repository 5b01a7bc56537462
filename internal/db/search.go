package db

import "github.com/kailas-cloud/zotsearch/internal/domain/filter"

// KNNQuery is the input for a vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Distance is the raw metric value, lower is closer.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
