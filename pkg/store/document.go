package store

// ConsiderationEntry is one "Que," clause as stored in embedding metadata.
type ConsiderationEntry struct {
	Consideration string `json:"consideration"`
}

// EmbeddingMetadata is the metadata bag stored next to every chunk vector.
type EmbeddingMetadata struct {
	DocumentName     string               `json:"document_name"`
	FilePath         string               `json:"file_path"`
	ResolvePage      string               `json:"resolve_page"`
	CollectionName   string               `json:"collection_name"`
	Considerations   []ConsiderationEntry `json:"considerations"`
	Copia            string               `json:"copia"`
	NumberResolution *string              `json:"number_resolution,omitempty"`
	UUID             string               `json:"uuid"`
	ChunkIndex       int                  `json:"chunk_index"`
	Text             string               `json:"text"`
}

// ConsiderationTexts flattens the stored clauses.
func (m EmbeddingMetadata) ConsiderationTexts() []string {
	out := make([]string, 0, len(m.Considerations))
	for _, c := range m.Considerations {
		out = append(out, c.Consideration)
	}
	return out
}

// Number returns number_resolution or "" when the document had none.
func (m EmbeddingMetadata) Number() string {
	if m.NumberResolution == nil {
		return ""
	}
	return *m.NumberResolution
}

// Source describes where the chunk came from.
func (m EmbeddingMetadata) Source() Source {
	return Source{
		FilePath:     m.FilePath,
		DocumentName: m.DocumentName,
		ResolvePage:  m.ResolvePage,
	}
}

// Consideration builds the consideration descriptor of the chunk's document.
func (m EmbeddingMetadata) Consideration() Consideration {
	return Consideration{
		DocumentName:   m.DocumentName,
		Considerations: m.ConsiderationTexts(),
		Copia:          m.Copia,
	}
}
