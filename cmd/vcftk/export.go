package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vcftk/vcftk/internal/export"
	"github.com/vcftk/vcftk/internal/table"
)

func newExportCmd() *cobra.Command {
	var out string
	var withStats bool
	var withAnnotations bool
	var withGenotypes bool

	cmd := &cobra.Command{
		Use:   "export <input.vcf>",
		Short: "Export dataset tables to a DuckDB database",
		Long:  "Build the variant metadata table (plus optional statistics, genotype and\nannotation tables) and write them to a DuckDB file for SQL slicing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("export requires an output path (--output)")
			}
			if filepath.Ext(out) != ".duckdb" && filepath.Ext(out) != ".db" {
				out = out + ".duckdb"
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

			tables := make(map[string]*table.Table)

			variants, err := ds.Variants()
			if err != nil {
				return err
			}
			tables["variants"] = variants

			if withStats {
				stats, err := ds.Stats(false)
				if err != nil {
					return err
				}
				tables["stats"] = stats
			}
			if withGenotypes {
				m, err := ds.GenotypeMatrix()
				if err != nil {
					return err
				}
				tables["genotypes"] = m.StringTable()
			}
			if withAnnotations {
				if _, err := ds.VariantInfo(); err != nil {
					return err
				}
				anns, err := ds.ExplodeAnnotations(false)
				if err != nil {
					return err
				}
				tables["annotations"] = anns
			}

			db, err := export.OpenDuckDB(out)
			if err != nil {
				return err
			}
			defer db.Close()

			for name, t := range tables {
				if err := db.WriteTable(name, "ID", t); err != nil {
					return err
				}
				fmt.Printf("wrote table %s (%d rows)\n", name, t.NRows())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Output DuckDB file path")
	cmd.Flags().BoolVar(&withStats, "stats", false, "Include the per-variant statistics table")
	cmd.Flags().BoolVar(&withGenotypes, "genotypes", false, "Include the genotype matrix table")
	cmd.Flags().BoolVar(&withAnnotations, "annotations", false, "Include the exploded annotation table")
	return cmd
}
