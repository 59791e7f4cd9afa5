package main

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reportauto/adapters/ingest"
	"reportauto/domain/recipe"
	"reportauto/engine"
	"reportauto/internal"
	"reportauto/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "reportauto",
		Short: "Run analysis recipes against CSV and Excel files",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var input string
	var recipePath string
	var out string
	var multiSheet bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a recipe and write the report bundle",
		Long: `Execute a recipe against a dataset and write the report.

Example: reportauto run --input sales.xlsx --recipe monthly.json --out report.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger()

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			recipeJSON, err := os.ReadFile(recipePath)
			if err != nil {
				return fmt.Errorf("reading recipe: %w", err)
			}
			rec, err := recipe.Parse(recipeJSON)
			if err != nil {
				return err
			}

			sheets, err := ingest.NewReader(logger).Read(input, data, multiSheet)
			if err != nil {
				return err
			}

			eng := engine.New(logger, cfg.Engine.StepParallelism)
			bundles := make([]*engine.Bundle, len(sheets))
			for i, sheet := range sheets {
				b, err := eng.Execute(cmd.Context(), sheet.Table, rec)
				if err != nil {
					return err
				}
				bundles[i] = b
			}

			if out == "" {
				out = rec.OutputFilename
			}
			return writeOutput(out, sheets, bundles)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Path to the CSV or Excel dataset")
	cmd.Flags().StringVar(&recipePath, "recipe", "", "Path to the recipe JSON")
	cmd.Flags().StringVar(&out, "out", "", "Output path (defaults to the recipe's output_filename)")
	cmd.Flags().BoolVar(&multiSheet, "multi-sheet", false, "Run the recipe on every workbook sheet")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("recipe")

	return cmd
}

// writeOutput writes a bare CSV for the single-sheet artifact-free
// case and a zip otherwise, mirroring the HTTP response shape.
func writeOutput(out string, sheets []ingest.Sheet, bundles []*engine.Bundle) error {
	if len(bundles) == 1 && len(bundles[0].Artifacts) == 0 {
		if err := os.WriteFile(out, bundles[0].Report, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("report written to %s\n", out)
		return nil
	}

	if filepath.Ext(out) != ".zip" {
		out += ".zip"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	multi := len(bundles) > 1
	for i, b := range bundles {
		entries := append([]engine.NamedArtifact{{Name: b.Filename, Data: b.Report}}, b.Artifacts...)
		for _, e := range entries {
			name := e.Name
			if multi {
				name = sheets[i].Name + "_" + name
			}
			w, err := zw.Create(name)
			if err != nil {
				return fmt.Errorf("writing bundle: %w", err)
			}
			if _, err := w.Write(e.Data); err != nil {
				return fmt.Errorf("writing bundle: %w", err)
			}
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	fmt.Printf("bundle written to %s\n", out)
	return nil
}
