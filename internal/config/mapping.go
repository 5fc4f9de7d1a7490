package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BartekS5/tourmap/pkg/models"
)

// LoadMapping reads and parses a mapping document from the given path.
// It returns an error if the file cannot be read, parsed, or holds an
// invalid transform or source type.
func LoadMapping(filePath string) (*models.MappingDocument, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	doc, err := models.LoadMapping(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}
	return doc, nil
}

// SaveMapping writes doc as indented JSON.
func SaveMapping(filePath string, doc *models.MappingDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write mapping file '%s': %w", filePath, err)
	}
	return nil
}

// LoadSchema reads a custom target schema. An empty path gives the default travel schema.
func LoadSchema(filePath string) (*models.TargetSchema, error) {
	if filePath == "" {
		return models.DefaultTargetSchema(), nil
	}
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file '%s': %w", filePath, err)
	}
	var s models.TargetSchema
	if err := json.Unmarshal(bytes, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema file '%s': %w", filePath, err)
	}
	if len(s.Sections) == 0 {
		return nil, fmt.Errorf("schema file '%s' declares no sections", filePath)
	}
	return models.NewTargetSchema(s.Sections...), nil
}
