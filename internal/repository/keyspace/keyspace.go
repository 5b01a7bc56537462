// Package keyspace derives the Redis key layout of a collection.
//
//	<prefix><collection>:<item_key>   document hash
//	<prefix><collection>:idx          FT index name
//	<prefix>collection:<collection>   collection metadata hash
//	<prefix>lock:sync:<collection>    cross-process sync lock
package keyspace

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/zotsearch/internal/db"
)

// Space is one collection under a key prefix.
type Space struct {
	prefix     string
	collection string
}

// New validates the collection name and returns its key space.
func New(prefix, collection string) (Space, error) {
	if !db.IsValidIdentifier(collection) {
		return Space{}, fmt.Errorf("invalid collection name %q", collection)
	}
	return Space{prefix: prefix, collection: collection}, nil
}

// Collection returns the collection name.
func (s Space) Collection() string { return s.collection }

// IndexName returns the FT index name.
func (s Space) IndexName() string { return s.prefix + s.collection + ":idx" }

// DocPrefix is the key prefix the index covers.
func (s Space) DocPrefix() string { return s.prefix + s.collection + ":" }

// DocKey returns the hash key for an item key.
func (s Space) DocKey(id string) string { return s.DocPrefix() + id }

// DocID extracts the item key from a document hash key.
func (s Space) DocID(key string) string { return strings.TrimPrefix(key, s.DocPrefix()) }

// DocPattern matches every document hash of the collection.
func (s Space) DocPattern() string { return s.DocPrefix() + "*" }

// MetaKey returns the collection metadata hash key.
func (s Space) MetaKey() string { return s.prefix + "collection:" + s.collection }

// LockKey returns the key guarding sync runs on the collection.
func (s Space) LockKey() string { return s.prefix + "lock:sync:" + s.collection }
