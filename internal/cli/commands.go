// Package cli handles the command-line interface logic
// using the Cobra library.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BartekS5/tourmap/internal/config"
	"github.com/BartekS5/tourmap/internal/etl"
	"github.com/BartekS5/tourmap/pkg/logger"
	"github.com/BartekS5/tourmap/pkg/models"
)

// sampleOptions select one record from a saved partner response.
type sampleOptions struct {
	File        string
	RecordsPath string
	Index       int
}

func (o *sampleOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.File, "sample", "s", "", "Path to a saved partner API response")
	cmd.Flags().StringVar(&o.RecordsPath, "records-path", "", "gjson path of the record list inside the response")
	cmd.Flags().IntVar(&o.Index, "index", 0, "Which record to use as the sample")
	cmd.MarkFlagRequired("sample")
}

func newCatalogCmd() *cobra.Command {
	var opts sampleOptions

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List every field path found in a sample record",
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := readSample(opts.File, opts.RecordsPath, opts.Index)
			if err != nil {
				return err
			}
			catalog := etl.ExtractCatalog(sample.Raw, "")
			logger.Infof("Extracted %d source fields", catalog.Len())
			return writeJSON(cmd.OutOrStdout(), catalog.Fields())
		},
	}
	opts.bind(cmd)
	return cmd
}

func newAutoDetectCmd() *cobra.Command {
	var (
		opts        sampleOptions
		mappingFile string
		schemaFile  string
		wholesaler  string
		outFile     string
	)

	cmd := &cobra.Command{
		Use:   "autodetect",
		Short: "Bind unmapped enabled fields to sample paths by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.LoadSchema(schemaFile)
			if err != nil {
				return err
			}
			sample, err := readSample(opts.File, opts.RecordsPath, opts.Index)
			if err != nil {
				return err
			}
			doc, set, err := loadMappingSet(mappingFile, schema)
			if err != nil {
				return err
			}
			if wholesaler == "" && doc != nil {
				wholesaler = doc.WholesalerID
			}
			if wholesaler == "" {
				return fmt.Errorf("--wholesaler is required when no mapping file is given")
			}

			bound := etl.AutoDetect(set, etl.ExtractCatalog(sample.Raw, ""), schema)
			logger.Infof("Auto-detected %d field bindings", len(bound))
			for _, id := range bound {
				m, _ := set.Mapping(id)
				logger.Debugf("  %s <- %s", id, m.SourceValue)
			}

			out := models.NewMappingDocument(wholesaler, set)
			if outFile != "" {
				return config.SaveMapping(outFile, out)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "Existing mapping file to extend")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "Custom target schema file")
	cmd.Flags().StringVarP(&wholesaler, "wholesaler", "w", "", "Wholesaler id for a new mapping")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the mapping here instead of stdout")
	return cmd
}

func newTransformCmd() *cobra.Command {
	var (
		opts        sampleOptions
		mappingFile string
		schemaFile  string
		validate    bool
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Preview the target document built from one sample record",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := config.LoadSchema(schemaFile)
			if err != nil {
				return err
			}
			sample, err := readSample(opts.File, opts.RecordsPath, opts.Index)
			if err != nil {
				return err
			}
			_, set, err := loadMappingSet(mappingFile, schema)
			if err != nil {
				return err
			}

			t := etl.NewTransformer(schema, etl.WithLogger(logger.L()))
			doc := t.Transform(sample.Record, set)
			if !validate {
				return writeJSON(cmd.OutOrStdout(), doc)
			}

			res := etl.NewValidator(schema).Validate(etl.NewValidationRequest(sample.Record.Value(), doc, set))
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("validation failed with %d errors", len(res.Errors))
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVarP(&mappingFile, "mapping", "m", "", "Mapping file")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "Custom target schema file")
	cmd.Flags().BoolVar(&validate, "validate", false, "Print the validation report instead of the document")
	cmd.MarkFlagRequired("mapping")
	return cmd
}
