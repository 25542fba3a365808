package contract

import (
	"context"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/specification"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error)
}
