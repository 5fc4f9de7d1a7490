package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BartekS5/tourmap/pkg/logger"
	"github.com/BartekS5/tourmap/pkg/models"
	"github.com/BartekS5/tourmap/pkg/utils"
)

type Pipeline struct {
	Extractor   Extractor
	Loader      Loader
	Transformer *Transformer
	Mappings    *models.MappingSet
	// Validator, when set, drops documents that fail validation.
	Validator *Validator
	BatchSize int
	DryRun    bool
	// CheckpointFile stores the next offset between batches; empty disables it.
	CheckpointFile string
}

// Stats summarises a pipeline run.
type Stats struct {
	Records int
	Loaded  int
	Empty   int
	Invalid int
}

func NewPipeline(ext Extractor, loader Loader, t *Transformer, set *models.MappingSet, batchSize int, dryRun bool) *Pipeline {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Pipeline{
		Extractor:   ext,
		Loader:      loader,
		Transformer: t,
		Mappings:    set,
		BatchSize:   batchSize,
		DryRun:      dryRun,
	}
}

func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	offset := loadCheckpoint(p.CheckpointFile)

	logger.Infof("Starting pipeline. Batch Size: %d, Start Offset: %d, DryRun: %v", p.BatchSize, offset, p.DryRun)
	startTime := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		records, next, err := p.Extractor.Extract(ctx, p.BatchSize, offset)
		if err != nil {
			logger.Errorf("Extraction failed at offset %d: %v", offset, err)
			return stats, err
		}
		if len(records) == 0 {
			logger.Info("No more records to process.")
			break
		}

		docs := make([]map[string]any, 0, len(records))
		for i, rec := range records {
			stats.Records++
			doc := p.Transformer.Transform(rec, p.Mappings)
			if len(doc) == 0 {
				stats.Empty++
				continue
			}
			if p.Validator != nil {
				res := p.Validator.Validate(NewValidationRequest(rec.Value(), doc, p.Mappings))
				if !res.Success {
					stats.Invalid++
					logger.Warnf("Skipping record %d: %s", offset+i, summarizeIssues(res.Errors))
					continue
				}
			}
			docs = append(docs, doc)
		}

		if !p.DryRun {
			if len(docs) > 0 {
				if err := p.Loader.Load(ctx, docs); err != nil {
					logger.Errorf("Loading failed at offset %d: %v", offset, err)
					return stats, err
				}
			}
			saveCheckpoint(p.CheckpointFile, next)
		} else {
			logger.Infof("[DRY RUN] Would load %d documents", len(docs))
		}
		stats.Loaded += len(docs)
		offset = next

		rate := 0.0
		if d := time.Since(startTime).Seconds(); d > 0 {
			rate = float64(stats.Records) / d
		}
		logger.Infof("Batch done. Records: %d. Loaded: %d. Rate: %.2f rec/sec. New Offset: %d", stats.Records, stats.Loaded, rate, offset)
	}

	if !p.DryRun && p.CheckpointFile != "" {
		os.Remove(p.CheckpointFile)
	}
	logger.Info("Pipeline finished successfully.")
	return stats, nil
}

func summarizeIssues(issues []models.ValidationIssue) string {
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.Message
	}
	return strings.Join(msgs, "; ")
}

func loadCheckpoint(filename string) int {
	if filename == "" {
		return 0
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0
	}
	return utils.GetIntOffset(strings.TrimSpace(string(data)))
}

func saveCheckpoint(filename string, offset int) {
	if filename == "" {
		return
	}
	_ = os.WriteFile(filename, []byte(fmt.Sprintf("%d", offset)), 0644)
}

// JSONLoader writes one JSON document per line.
type JSONLoader struct {
	W      io.Writer
	Indent bool
}

func (l *JSONLoader) Load(ctx context.Context, docs []map[string]any) error {
	enc := json.NewEncoder(l.W)
	if l.Indent {
		enc.SetIndent("", "  ")
	}
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}
	return nil
}
