package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByPartner struct {
	Partner string
}

func (s ByPartner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("partner = ?", s.Partner)
}

type CreatedAfter struct {
	Time time.Time
}

func (s CreatedAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Time)
}

// HasEmbedding skips rows ingested before their embedding was written.
type HasEmbedding struct{}

func (s HasEmbedding) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding_value IS NOT NULL")
}
