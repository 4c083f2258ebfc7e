package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// CatalogEntry is one searchable row of the certification/service index.
// The vector column dimension is fixed when the table is created, see
// CatalogRepository.EnsureSchema.
type CatalogEntry struct {
	ID                string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CertificationName string `gorm:"column:certification_name;type:text;not null" json:"certification_name"`
	ServiceName       string `gorm:"column:service_name;type:text;not null" json:"service_name"`
	Category          string `gorm:"column:category;type:text;index" json:"category"`

	Skills   pq.StringArray `gorm:"column:skills;type:text[]" json:"skills,omitempty"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CertificationNameVector pgvector.Vector `gorm:"column:certification_name_vector;type:vector" json:"-"`

	IndexedAt time.Time `gorm:"column:indexed_at;type:timestamptz" json:"indexed_at"`
}

func (CatalogEntry) TableName() string { return "catalog_entries" }

// CatalogMatch is a search hit. Score is cosine similarity (1 - distance).
type CatalogMatch struct {
	CertificationName string  `gorm:"column:certification_name" json:"certification_name" bson:"certification_name"`
	ServiceName       string  `gorm:"column:service_name" json:"service_name" bson:"service_name"`
	Category          string  `gorm:"column:category" json:"category" bson:"category"`
	Score             float64 `gorm:"column:score" json:"score" bson:"score"`
}
