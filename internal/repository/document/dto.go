package document

import (
	"encoding/binary"
	"math"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
)

// Reserved hash fields next to the metadata fields.
const (
	fieldContent = "__content"
	fieldVector  = "__vector"
)

// buildHashFields flattens a document and its vector for HSET.
func buildHashFields(doc *domdoc.Document, vector []float32) map[string]string {
	md := doc.Metadata().Fields()
	m := make(map[string]string, len(md)+2)
	for k, v := range md {
		m[k] = v
	}
	m[fieldContent] = doc.Text()
	m[fieldVector] = vectorToBytes(vector)
	return m
}

// parseHashFields rebuilds a document from HGETALL output. The vector is dropped.
func parseHashFields(id string, m map[string]string) domdoc.Document {
	return domdoc.Reconstruct(id, m[fieldContent], domdoc.MetadataFromFields(m))
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
