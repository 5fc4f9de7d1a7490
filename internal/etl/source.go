package etl

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
)

// FileExtractor reads partner records from a saved API response. RecordsPath
// is a gjson path selecting the record list (e.g. "data.tours"); when empty
// the whole file is the list, or a single record if it is not an array.
type FileExtractor struct {
	Path        string
	RecordsPath string

	records []gjson.Result
	loaded  bool
}

func NewFileExtractor(path, recordsPath string) *FileExtractor {
	return &FileExtractor{Path: path, RecordsPath: recordsPath}
}

func (f *FileExtractor) load() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("failed to read source file '%s': %w", f.Path, err)
	}
	records, err := selectRecords(data, f.RecordsPath)
	if err != nil {
		return fmt.Errorf("source file '%s': %w", f.Path, err)
	}
	f.records = records
	f.loaded = true
	return nil
}

func (f *FileExtractor) Extract(ctx context.Context, batchSize int, offset int) ([]gjson.Result, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, offset, err
	}
	if err := f.load(); err != nil {
		return nil, offset, err
	}
	if offset >= len(f.records) {
		return nil, offset, nil
	}
	end := min(offset+batchSize, len(f.records))
	return f.records[offset:end], end, nil
}

// Sample is one partner record. Raw keeps the document's key order for
// catalog extraction; Record is the same bytes ready for path resolution.
type Sample struct {
	Raw    []byte
	Record gjson.Result
}

// ReadSample picks record index from r using the same selection rules as FileExtractor.
func ReadSample(r io.Reader, recordsPath string, index int) (*Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	records, err := selectRecords(data, recordsPath)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(records) {
		return nil, fmt.Errorf("record %d out of range (%d records)", index, len(records))
	}
	rec := records[index]
	return &Sample{Raw: []byte(rec.Raw), Record: rec}, nil
}

func selectRecords(data []byte, recordsPath string) ([]gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if recordsPath != "" {
		root = root.Get(recordsPath)
		if !root.Exists() {
			return nil, fmt.Errorf("records path %q not found", recordsPath)
		}
	}
	if root.IsArray() {
		return root.Array(), nil
	}
	return []gjson.Result{root}, nil
}
