package etl

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/BartekS5/tourmap/pkg/models"
)

type sliceExtractor struct {
	records []gjson.Result
	err     error
	calls   int
}

func (s *sliceExtractor) Extract(ctx context.Context, batchSize, offset int) ([]gjson.Result, int, error) {
	s.calls++
	if s.err != nil {
		return nil, offset, s.err
	}
	if offset >= len(s.records) {
		return nil, offset, nil
	}
	end := min(offset+batchSize, len(s.records))
	return s.records[offset:end], end, nil
}

type collectLoader struct {
	docs    []map[string]any
	batches int
}

func (c *collectLoader) Load(ctx context.Context, docs []map[string]any) error {
	c.batches++
	c.docs = append(c.docs, docs...)
	return nil
}

func tourSet() *models.MappingSet {
	return newSet(map[string]models.FieldMapping{
		"tour.code":             models.APIMapping("Code"),
		"tour.title":            models.APIMapping("Name"),
		"departure.start_date":  models.APIMapping("periods[].start"),
		"departure.price_adult": models.APIMapping("periods[].price"),
	})
}

func tourRecords(t *testing.T) []gjson.Result {
	return []gjson.Result{
		record(t, `{"Code": "A", "Name": "Alpha", "periods": [{"start": "2026-01-10", "price": 100}]}`),
		record(t, `{"Other": 1}`),
		record(t, `{"Code": "B", "Name": "Beta", "periods": []}`),
		record(t, `{"Code": "C", "Name": "Gamma", "periods": [{"start": "2026-03-01", "price": 300}]}`),
	}
}

func TestPipelineRun(t *testing.T) {
	ext := &sliceExtractor{records: tourRecords(t)}
	loader := &collectLoader{}

	p := NewPipeline(ext, loader, NewTransformer(nil), tourSet(), 2, false)
	stats, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Stats{Records: 4, Loaded: 3, Empty: 1}, stats)
	assert.Equal(t, 2, loader.batches)
	require.Len(t, loader.docs, 3)
	assert.Equal(t, "Gamma", loader.docs[2]["tour"].(map[string]any)["title"])
}

func TestPipelineValidatorDropsInvalid(t *testing.T) {
	loader := &collectLoader{}
	p := NewPipeline(&sliceExtractor{records: tourRecords(t)}, loader, NewTransformer(nil), tourSet(), 10, false)
	p.Validator = NewValidator(nil)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Records: 4, Loaded: 2, Empty: 1, Invalid: 1}, stats)
	assert.Len(t, loader.docs, 2)
}

func TestPipelineDryRun(t *testing.T) {
	loader := &collectLoader{}
	p := NewPipeline(&sliceExtractor{records: tourRecords(t)}, loader, NewTransformer(nil), tourSet(), 0, true)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Loaded)
	assert.Equal(t, 0, loader.batches)
	assert.Equal(t, 100, p.BatchSize)
}

func TestPipelineErrors(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline(&sliceExtractor{err: boom}, &collectLoader{}, NewTransformer(nil), tourSet(), 10, false)
	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ext := &sliceExtractor{records: tourRecords(t)}
	p = NewPipeline(ext, &collectLoader{}, NewTransformer(nil), tourSet(), 10, false)
	_, err = p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ext.calls)
}

func TestPipelineCheckpoint(t *testing.T) {
	checkpoint := filepath.Join(t.TempDir(), "offset")
	require.NoError(t, os.WriteFile(checkpoint, []byte("3\n"), 0644))

	loader := &collectLoader{}
	p := NewPipeline(&sliceExtractor{records: tourRecords(t)}, loader, NewTransformer(nil), tourSet(), 10, false)
	p.CheckpointFile = checkpoint

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
	require.Len(t, loader.docs, 1)
	assert.Equal(t, "C", loader.docs[0]["tour"].(map[string]any)["code"])

	_, err = os.Stat(checkpoint)
	assert.True(t, os.IsNotExist(err), "checkpoint is removed after a full run")
}

func TestPipelineFromFileToJSON(t *testing.T) {
	src := filepath.Join(t.TempDir(), "response.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"status": "ok", "data": {"tours": [
		{"Code": "A", "Name": "Alpha", "periods": [{"start": "2026-01-10", "price": 100}]},
		{"Code": "B", "Name": "Beta", "periods": [{"start": "2026-02-10", "price": 200}, {"start": "2026-02-17", "price": 210}]}
	]}}`), 0644))

	var buf bytes.Buffer
	p := NewPipeline(NewFileExtractor(src, "data.tours"), &JSONLoader{W: &buf}, NewTransformer(nil), tourSet(), 1, false)
	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"tour": {"code": "A", "title": "Alpha"}, "departure": [{"start_date": "2026-01-10", "price_adult": 100}]}`, lines[0])
	assert.Contains(t, lines[1], `"2026-02-17"`)
}

func TestPipelineWithoutMappings(t *testing.T) {
	loader := &collectLoader{}
	p := NewPipeline(&sliceExtractor{records: tourRecords(t)}, loader, NewTransformer(nil), nil, 10, false)
	p.Validator = NewValidator(nil)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 4, stats.Empty)
	assert.Empty(t, loader.docs)
}

func TestFileExtractorErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := NewFileExtractor(filepath.Join(dir, "missing.json"), "").Extract(context.Background(), 10, 0)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"data": `), 0644))
	_, _, err = NewFileExtractor(bad, "").Extract(context.Background(), 10, 0)
	assert.Error(t, err)

	single := filepath.Join(dir, "single.json")
	require.NoError(t, os.WriteFile(single, []byte(`{"Code": "A"}`), 0644))
	records, next, err := NewFileExtractor(single, "").Extract(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
	assert.Equal(t, []any{map[string]any{"Code": "A"}}, values(records))

	_, _, err = NewFileExtractor(single, "data.tours").Extract(context.Background(), 10, 0)
	assert.Error(t, err)
}

func TestReadSample(t *testing.T) {
	body := `{"data": [{"b": 1, "a": 2}, {"c": 3}]}`

	s, err := ReadSample(strings.NewReader(body), "data", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ExtractCatalog(s.Raw, "").Paths())
	assert.Equal(t, map[string]any{"b": 1.0, "a": 2.0}, s.Record.Value())

	_, err = ReadSample(strings.NewReader(body), "data", 2)
	assert.Error(t, err)
}
