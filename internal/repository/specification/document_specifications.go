package specification

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching term literally anywhere.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

type ByCollection struct {
	Collection string
}

func (s ByCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection_name = ?", s.Collection)
}

// ByDocumentName matches the stored name exactly.
type ByDocumentName struct {
	Name string
}

func (s ByDocumentName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// ByPath matches either the public locator or the physical path.
type ByPath struct {
	Path string
}

func (s ByPath) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("path = ? OR physical_path = ?", s.Path, s.Path)
}

// NameContains filters documents whose name contains the query (ILIKE).
type NameContains struct {
	Query string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", ContainsPattern(s.Query))
}

type ByDocumentID struct {
	DocumentID uint
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

// RequestedAtLeastOnce keeps requested_documents rows with a positive count.
type RequestedAtLeastOnce struct{}

func (s RequestedAtLeastOnce) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("requested_count > 0")
}
