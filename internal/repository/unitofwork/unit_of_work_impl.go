package unitofwork

import (
	"context"
	"fmt"

	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) EmbeddingRepository() contract.EmbeddingRepository {
	return implementation.NewEmbeddingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RequestedDocumentRepository() contract.RequestedDocumentRepository {
	return implementation.NewRequestedDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) FeedbackRepository() contract.FeedbackRepository {
	return implementation.NewFeedbackRepository(u.getDB())
}
