package main

import (
	"github.com/spf13/cobra"
)

func newVariantsCmd() *cobra.Command {
	var createIDs bool
	var useAlleles bool

	cmd := &cobra.Command{
		Use:   "variants <input.vcf>",
		Short: "Show the variant metadata table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := openDataset(args[0], logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			if createIDs {
				if _, err := ds.CreateIDs(useAlleles); err != nil {
					return err
				}
			}

			variants, err := ds.Variants()
			if err != nil {
				return err
			}
			return printTable(variants, "ID")
		},
	}

	cmd.Flags().BoolVar(&createIDs, "create-ids", false, "Derive deterministic variant IDs from positional fields")
	cmd.Flags().BoolVar(&useAlleles, "alleles", false, "Include REF/ALT in derived IDs (with --create-ids)")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <input.vcf>",
		Short: "Show the per-variant INFO field table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := openDataset(args[0], logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			info, err := ds.VariantInfo()
			if err != nil {
				return err
			}
			return printTable(info, "ID")
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <input.vcf>",
		Short: "Compute per-variant summary statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := openDataset(args[0], logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			stats, err := ds.Stats(false)
			if err != nil {
				return err
			}
			return printTable(stats, "ID")
		},
	}
}

func newGenotypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genotypes <input.vcf>",
		Short: "Show the variant × sample genotype matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := openDataset(args[0], logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			m, err := ds.GenotypeMatrix()
			if err != nil {
				return err
			}
			return printTable(m.StringTable(), "ID")
		},
	}
}

func newAnnotationsCmd() *cobra.Command {
	var addToMetadata bool

	cmd := &cobra.Command{
		Use:   "annotations <input.vcf>",
		Short: "Explode the multi-valued annotation column (CSQ) into rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ds, err := openDataset(args[0], logger)
			if err != nil {
				return err
			}
			defer ds.Close()

			// Annotation values live in INFO; pull them into metadata first.
			if _, err := ds.VariantInfo(); err != nil {
				return err
			}

			anns, err := ds.ExplodeAnnotations(addToMetadata)
			if err != nil {
				return err
			}
			return printTable(anns, "ID")
		},
	}

	cmd.Flags().BoolVar(&addToMetadata, "merge", false, "Left-merge annotations onto the variant metadata")
	return cmd
}
