package etl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BartekS5/tourmap/pkg/models"
)

// FileMappingStore keeps each wholesaler's mapping in <Dir>/<wholesaler>.json.
type FileMappingStore struct {
	Dir string
}

func NewFileMappingStore(dir string) *FileMappingStore {
	return &FileMappingStore{Dir: dir}
}

func (s *FileMappingStore) path(wholesalerID string) (string, error) {
	if wholesalerID == "" || strings.ContainsAny(wholesalerID, `/\`) || strings.HasPrefix(wholesalerID, ".") {
		return "", fmt.Errorf("invalid wholesaler id %q", wholesalerID)
	}
	return filepath.Join(s.Dir, wholesalerID+".json"), nil
}

func (s *FileMappingStore) Load(ctx context.Context, wholesalerID string) (*models.MappingDocument, error) {
	p, err := s.path(wholesalerID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("wholesaler %s: %w", wholesalerID, models.ErrMappingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", p, err)
	}
	doc, err := models.LoadMapping(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", p, err)
	}
	return doc, nil
}

func (s *FileMappingStore) Save(ctx context.Context, doc *models.MappingDocument) error {
	p, err := s.path(doc.WholesalerID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file '%s': %w", p, err)
	}
	return os.Rename(tmp, p)
}
