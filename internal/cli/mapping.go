package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BartekS5/tourmap/internal/config"
	"github.com/BartekS5/tourmap/pkg/logger"
)

type storeOptions struct {
	Store      string
	Dir        string
	Wholesaler string
}

func newMappingCmd(root *rootOptions) *cobra.Command {
	opts := &storeOptions{}

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Move wholesaler mappings between files and a mapping store",
	}
	cmd.PersistentFlags().StringVar(&opts.Store, "store", storeFile, "Mapping store: file, mongo or sql")
	cmd.PersistentFlags().StringVar(&opts.Dir, "dir", "", "Directory of the file store (default MAPPING_DIR)")

	var pushFile string
	push := &cobra.Command{
		Use:   "push",
		Short: "Save a mapping file into the store",
		RunE: func(c *cobra.Command, args []string) error {
			doc, err := config.LoadMapping(pushFile)
			if err != nil {
				return err
			}
			if opts.Wholesaler != "" {
				doc.WholesalerID = opts.Wholesaler
			}
			if doc.WholesalerID == "" {
				return fmt.Errorf("mapping file has no wholesaler_id; pass --wholesaler")
			}

			store, closeFn, err := openStore(c.Context(), root.cfg, opts.Store, opts.Dir)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.Save(c.Context(), doc); err != nil {
				return err
			}
			logger.Infof("Saved mapping for %s to %s store (%d mappings)", doc.WholesalerID, opts.Store, len(doc.Mappings))
			return nil
		},
	}
	push.Flags().StringVarP(&pushFile, "mapping", "m", "", "Mapping file to save")
	push.Flags().StringVarP(&opts.Wholesaler, "wholesaler", "w", "", "Override the wholesaler id of the file")
	push.MarkFlagRequired("mapping")

	var outFile string
	pull := &cobra.Command{
		Use:   "pull",
		Short: "Load a wholesaler mapping from the store",
		RunE: func(c *cobra.Command, args []string) error {
			store, closeFn, err := openStore(c.Context(), root.cfg, opts.Store, opts.Dir)
			if err != nil {
				return err
			}
			defer closeFn()

			doc, err := store.Load(c.Context(), opts.Wholesaler)
			if err != nil {
				return err
			}
			if outFile != "" {
				return config.SaveMapping(outFile, doc)
			}
			return writeJSON(c.OutOrStdout(), doc)
		},
	}
	pull.Flags().StringVarP(&opts.Wholesaler, "wholesaler", "w", "", "Wholesaler id")
	pull.Flags().StringVarP(&outFile, "out", "o", "", "Write the mapping here instead of stdout")
	pull.MarkFlagRequired("wholesaler")

	cmd.AddCommand(push, pull)
	return cmd
}
