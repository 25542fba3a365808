package model

import "time"

type RequestedDocument struct {
	Id              uint      `gorm:"primaryKey;autoIncrement"`
	DocumentId      uint      `gorm:"not null;uniqueIndex"`
	RequestedCount  int       `gorm:"not null;default:1"`
	LastRequestedAt time.Time `gorm:"not null"`

	Document *Document `gorm:"foreignKey:DocumentId"`
}

func (RequestedDocument) TableName() string {
	return "requested_documents"
}
