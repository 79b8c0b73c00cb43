package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vcftk/vcftk/internal/dataset"
)

func newSplitCmd() *cobra.Command {
	var columns []string
	var outDir string
	var rewriteIDs bool

	cmd := &cobra.Command{
		Use:   "split <input.vcf>",
		Short: "Split the call set by sample attribute columns",
		Long:  "Group the sample table on one or more attribute columns and write one\nindependent VCF per group, each restricted to that group's samples.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagSampleTable == "" {
				return fmt.Errorf("split requires a sample table (--samples)")
			}
			if len(columns) == 0 {
				return fmt.Errorf("split requires at least one grouping column (--by)")
			}

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

			parts, err := ds.Split(dataset.AxisSamples, columns...)
			if err != nil {
				return err
			}

			for key, part := range parts {
				out := filepath.Join(outDir, groupFileName(args[0], key))
				if err := part.Save(out, dataset.SaveOptions{RewriteIDs: rewriteIDs}); err != nil {
					part.Close()
					return fmt.Errorf("save group %q: %w", key, err)
				}
				part.Close()
				fmt.Printf("%s\t%d samples\t%s\n", key, len(part.Samples()), out)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&columns, "by", nil, "Sample table columns to group by")
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "Directory for the per-group VCFs")
	cmd.Flags().BoolVar(&rewriteIDs, "rewrite-ids", false, "Overwrite record IDs with derived variant IDs")
	return cmd
}

// groupFileName derives an output file name for one split group.
func groupFileName(input, key string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".vcf")
	safe := strings.NewReplacer("/", "-", " ", "_").Replace(key)
	return fmt.Sprintf("%s.%s.vcf", base, safe)
}

func newSaveCmd() *cobra.Command {
	var out string
	var keep []string
	var rewriteIDs bool
	var subset []string

	cmd := &cobra.Command{
		Use:   "save <input.vcf>",
		Short: "Re-export the call set, optionally filtered by variant ID or sample",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("save requires an output path (--output)")
			}

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

			if len(subset) > 0 {
				sub, err := ds.Subset(dataset.AxisSamples, subset...)
				if err != nil {
					return err
				}
				defer sub.Close()
				ds = sub
			}

			opts := dataset.SaveOptions{RewriteIDs: rewriteIDs}
			if len(keep) > 0 {
				opts.KeepIDs = keep
			}
			return ds.Save(out, opts)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output VCF path (.gz for compressed)")
	cmd.Flags().StringSliceVar(&keep, "keep", nil, "Variant IDs to keep (default: all)")
	cmd.Flags().StringSliceVar(&subset, "subset", nil, "Restrict output to these samples")
	cmd.Flags().BoolVar(&rewriteIDs, "rewrite-ids", false, "Overwrite record IDs with derived variant IDs")
	return cmd
}
