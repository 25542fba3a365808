package service

import "errors"

var (
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentExists     = errors.New("document already exists in collection")
	ErrUnreadableDocument = errors.New("document has no readable pages")
	ErrIndexingFailed     = errors.New("no chunk of the document could be indexed")
)
