package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BartekS5/tourmap/internal/config"
	"github.com/BartekS5/tourmap/internal/etl"
	"github.com/BartekS5/tourmap/pkg/database"
	"github.com/BartekS5/tourmap/pkg/logger"
)

type RunOptions struct {
	Source      string
	RecordsPath string
	MappingFile string
	SchemaFile  string
	BatchSize   int
	DryRun      bool
	Sink        string
	Checkpoint  string
	Validate    bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Transform every record of a partner response and load the tours",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, root.cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Source, "source", "", "Path to the saved partner API response")
	cmd.Flags().StringVar(&opts.RecordsPath, "records-path", "", "gjson path of the record list inside the response")
	cmd.Flags().StringVarP(&opts.MappingFile, "mapping", "m", "", "Path to mapping file")
	cmd.Flags().StringVar(&opts.SchemaFile, "schema", "", "Custom target schema file")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", 100, "Batch size")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Transform without loading")
	cmd.Flags().StringVar(&opts.Sink, "sink", "stdout", "Where to load tours: stdout or mongo")
	cmd.Flags().StringVar(&opts.Checkpoint, "checkpoint", "", "Resume file holding the next record offset")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "Skip records that fail validation")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("mapping")

	return cmd
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, opts *RunOptions) error {
	ctx := cmd.Context()

	schema, err := config.LoadSchema(opts.SchemaFile)
	if err != nil {
		return err
	}
	doc, set, err := loadMappingSet(opts.MappingFile, schema)
	if err != nil {
		return err
	}

	var loader etl.Loader
	switch opts.Sink {
	case "stdout":
		loader = &etl.JSONLoader{W: cmd.OutOrStdout()}
	case "mongo":
		if err := cfg.RequireMongo(); err != nil {
			return err
		}
		client, err := database.ConnectMongo(ctx, cfg.MongoConnString)
		if err != nil {
			return err
		}
		defer database.DisconnectMongo(client)
		loader = etl.NewMongoLoader(client, cfg.MongoDatabase, doc.WholesalerID)
	default:
		return fmt.Errorf("unknown sink %q (want stdout or mongo)", opts.Sink)
	}

	t := etl.NewTransformer(schema, etl.WithLogger(logger.L()))
	pipeline := etl.NewPipeline(etl.NewFileExtractor(opts.Source, opts.RecordsPath), loader, t, set, opts.BatchSize, opts.DryRun)
	pipeline.CheckpointFile = opts.Checkpoint
	if opts.Validate {
		pipeline.Validator = etl.NewValidator(schema)
	}

	logger.Infof("Starting import for wholesaler %s from %s...", doc.WholesalerID, opts.Source)
	stats, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	logger.Infof("Import finished. Records: %d, Loaded: %d, Empty: %d, Invalid: %d",
		stats.Records, stats.Loaded, stats.Empty, stats.Invalid)
	return nil
}
