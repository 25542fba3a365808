package mapper

import (
	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/model"
)

type RequestedDocumentMapper struct{}

func NewRequestedDocumentMapper() *RequestedDocumentMapper {
	return &RequestedDocumentMapper{}
}

func (m *RequestedDocumentMapper) ToEntity(r *model.RequestedDocument) *entity.RequestedDocument {
	if r == nil {
		return nil
	}
	e := &entity.RequestedDocument{
		Id:              r.Id,
		DocumentId:      r.DocumentId,
		RequestedCount:  r.RequestedCount,
		LastRequestedAt: r.LastRequestedAt,
	}
	if r.Document != nil {
		e.DocumentName = r.Document.Name
	}
	return e
}

func (m *RequestedDocumentMapper) ToEntities(rows []*model.RequestedDocument) []*entity.RequestedDocument {
	entities := make([]*entity.RequestedDocument, len(rows))
	for i, r := range rows {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
