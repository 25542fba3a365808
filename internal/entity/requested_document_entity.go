package entity

import "time"

type RequestedDocument struct {
	Id              uint
	DocumentId      uint
	DocumentName    string
	RequestedCount  int
	LastRequestedAt time.Time
}
