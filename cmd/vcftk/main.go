// Package main provides the vcftk command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vcftk/vcftk/internal/dataset"
	"github.com/vcftk/vcftk/internal/table"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Persistent flags shared by the dataset-consuming commands.
var (
	flagSampleTable string
	flagSampleCol   string
	flagThreads     int
	flagVerbose     bool
	flagTSV         bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "vcftk",
		Short:   "Tabular views over VCF variant-call data",
		Long:    "vcftk builds in-memory tabular views over VCF call sets: variant metadata,\nper-variant statistics, genotype matrices, annotation explosion, and\nsample-based splitting into independent sub-datasets.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flagSampleTable, "samples", "s", "", "Sample attribute table (TSV/CSV, indexed by the sample column)")
	pf.StringVar(&flagSampleCol, "sample-column", dataset.DefaultSampleIDColumn, "Sample ID column name in the sample table")
	pf.IntVarP(&flagThreads, "threads", "t", 0, "Decode thread hint (default from config, else 1)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Verbose logging")
	pf.BoolVar(&flagTSV, "tsv", false, "Emit tables as TSV instead of pretty-printing")

	root.AddCommand(newVariantsCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newGenotypesCmd())
	root.AddCommand(newAnnotationsCmd())
	root.AddCommand(newSplitCmd())
	root.AddCommand(newSaveCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig wires viper: ~/.vcftk.yaml plus VCFTK_* environment variables.
func initConfig() {
	viper.SetConfigName(".vcftk")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("VCFTK")
	viper.AutomaticEnv()

	viper.SetDefault("threads", 1)
	viper.SetDefault("annotation.column", dataset.DefaultAnnotationColumn)

	// Missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the CLI logger. Progress and warnings go to stderr so
// table output on stdout stays clean.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// openDataset constructs the dataset facade for a command's VCF argument.
func openDataset(path string, logger *zap.Logger) (*dataset.Dataset, error) {
	opts := dataset.Options{
		SampleIDColumn:   flagSampleCol,
		Threads:          flagThreads,
		AnnotationColumn: viper.GetString("annotation.column"),
		Logger:           logger,
	}
	if opts.Threads == 0 {
		opts.Threads = viper.GetInt("threads")
	}

	if flagSampleTable != "" {
		st, err := table.ReadFile(flagSampleTable, flagSampleCol)
		if err != nil {
			return nil, fmt.Errorf("read sample table: %w", err)
		}
		opts.SampleTable = st
	}

	return dataset.Setup(path, opts)
}

// printTable writes a table to stdout in the selected output form.
func printTable(t *table.Table, indexName string) error {
	if flagTSV {
		return t.WriteTSV(os.Stdout, indexName)
	}
	t.Render(os.Stdout, indexName)
	return nil
}
