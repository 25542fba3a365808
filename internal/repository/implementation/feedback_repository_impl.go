package implementation

import (
	"context"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/mapper"
	"resolution-rag-be/internal/model"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"

	"gorm.io/gorm"
)

type FeedbackRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeedbackMapper
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeedbackMapper(),
	}
}

func (r *FeedbackRepositoryImpl) Create(ctx context.Context, feedback *entity.Feedback) error {
	m := r.mapper.ToModel(feedback)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*feedback = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeedbackRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	var rows []*model.Feedback
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Feedback, len(rows))
	for i, row := range rows {
		out[i] = r.mapper.ToEntity(row)
	}
	return out, nil
}
