package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BartekS5/tourmap/internal/config"
	"github.com/BartekS5/tourmap/internal/etl"
	"github.com/BartekS5/tourmap/pkg/database"
	"github.com/BartekS5/tourmap/pkg/logger"
	"github.com/BartekS5/tourmap/pkg/models"
)

// Mapping store backends selectable with --store.
const (
	storeFile  = "file"
	storeMongo = "mongo"
	storeSQL   = "sql"
)

// openStore connects the requested backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, kind, dir string) (etl.MappingStore, func(), error) {
	switch kind {
	case storeFile, "":
		if dir == "" {
			dir = cfg.MappingDir
		}
		return etl.NewFileMappingStore(dir), func() {}, nil

	case storeMongo:
		if err := cfg.RequireMongo(); err != nil {
			return nil, nil, err
		}
		client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			return nil, nil, err
		}
		return etl.NewMongoMappingStore(client, cfg.MongoDatabase), func() { database.DisconnectMongo(client) }, nil

	case storeSQL:
		if err := cfg.RequireSQL(); err != nil {
			return nil, nil, err
		}
		db, err := database.ConnectSQL(ctx, cfg.SQLConnString)
		if err != nil {
			return nil, nil, err
		}
		store, err := etl.NewSQLMappingStore(db, cfg.MappingTable)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, func() { db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q (want file, mongo or sql)", kind)
}

func readSample(path, recordsPath string, index int) (*etl.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file '%s': %w", path, err)
	}
	defer f.Close()

	sample, err := etl.ReadSample(f, recordsPath, index)
	if err != nil {
		return nil, fmt.Errorf("sample file '%s': %w", path, err)
	}
	return sample, nil
}

// loadMappingSet reads a mapping file. An empty path gives an empty set with
// every schema section enabled, which is where a new wholesaler starts.
func loadMappingSet(path string, schema *models.TargetSchema) (*models.MappingDocument, *models.MappingSet, error) {
	if path == "" {
		set := models.NewMappingSet()
		for _, sec := range schema.Sections {
			set.EnableSection(schema, sec.Name)
		}
		return nil, set, nil
	}
	doc, err := config.LoadMapping(path)
	if err != nil {
		return nil, nil, err
	}
	set, err := doc.MappingSet()
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("Loaded mapping for %s: %d mapped, %d enabled", doc.WholesalerID, set.Len(), len(set.EnabledFields()))
	return doc, set, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
