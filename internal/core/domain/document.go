package domain

import "github.com/google/uuid"

// Document is a (text, metadata) pair stored in the vector index
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"`
	Embedding []float32         `json:"embedding,omitempty"`
}

// ScoredDocument is a search hit with its cosine similarity
type ScoredDocument struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}

// DocType returns the doc_type metadata value
func (d *Document) DocType() string {
	return d.Metadata[MetaDocType]
}

// ToDocument converts a hierarchy node into an index document with a fresh ID
func ToDocument(r Renderable) *Document {
	return &Document{
		ID:       uuid.NewString(),
		Content:  r.ToText(),
		Metadata: r.ToMetadata(),
	}
}

// ToDocuments flattens the site tree and converts every node
func ToDocuments(site *SiteInfo) []*Document {
	nodes := Flatten(site)
	docs := make([]*Document, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, ToDocument(n))
	}
	return docs
}
