package etl

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/BartekS5/tourmap/pkg/models"
)

// Extractor returns up to batchSize raw partner records starting at offset
// and the offset to continue from.
type Extractor interface {
	Extract(ctx context.Context, batchSize int, offset int) ([]gjson.Result, int, error)
}

// Loader stores transformed documents.
type Loader interface {
	Load(ctx context.Context, docs []map[string]any) error
}

// MappingStore persists one MappingDocument per wholesaler.
// Load returns models.ErrMappingNotFound when nothing is stored.
type MappingStore interface {
	Load(ctx context.Context, wholesalerID string) (*models.MappingDocument, error)
	Save(ctx context.Context, doc *models.MappingDocument) error
}
