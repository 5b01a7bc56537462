package collection

import "strconv"

// Meta describes how the collection's vectors were produced.
type Meta struct {
	EmbeddingModel string
	VectorDim      int
}

// Info is the collection summary reported by status calls.
type Info struct {
	Name      string
	Count     int
	Meta      Meta
	CreatedAt int64
}

func metaToHash(m Meta, createdAt int64) map[string]string {
	return map[string]string{
		"embedding_model": m.EmbeddingModel,
		"vector_dim":      strconv.Itoa(m.VectorDim),
		"created_at":      strconv.FormatInt(createdAt, 10),
	}
}

func metaFromHash(h map[string]string) (Meta, int64) {
	dim, _ := strconv.Atoi(h["vector_dim"])
	createdAt, _ := strconv.ParseInt(h["created_at"], 10, 64)
	return Meta{EmbeddingModel: h["embedding_model"], VectorDim: dim}, createdAt
}
