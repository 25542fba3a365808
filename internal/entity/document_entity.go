package entity

import "time"

type Document struct {
	Id             uint
	Name           string
	CollectionName string
	Path           string
	PhysicalPath   string
	EmbeddingIds   []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasEmbedding reports whether id is already referenced by the document.
func (d *Document) HasEmbedding(id string) bool {
	for _, e := range d.EmbeddingIds {
		if e == id {
			return true
		}
	}
	return false
}
