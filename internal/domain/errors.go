package domain

import "errors"

var (
	// ErrItemNotFound signals a key unknown to the remote library.
	ErrItemNotFound = errors.New("item not found")
	// ErrDocumentNotFound signals a key absent from the search index.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidQuery signals an empty or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidFilter signals a filter on a field that is not filterable.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrSyncInProgress signals that another sync run holds the index.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrRemoteLibrary signals a failing remote library API.
	ErrRemoteLibrary = errors.New("remote library error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
