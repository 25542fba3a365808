package scope

import "gorm.io/gorm"

// MostRequestedFirst orders requested_documents by count, ties by recency.
func MostRequestedFirst(db *gorm.DB) *gorm.DB {
	return db.Order("requested_count DESC").Order("last_requested_at DESC")
}
