package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fam450/adapters/excel"
	"fam450/adapters/report"
	"fam450/app"
	"fam450/domain/core"
	"fam450/domain/sampling"
	"fam450/internal"
	"fam450/internal/config"
	apperrors "fam450/internal/errors"
	"fam450/ports"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fam450",
		Short:         "FAM 450 allowed-deviation calculator for tests of internal controls",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newDeviationsCmd(),
		newTableCmd(),
		newReportCmd(),
	)

	return rootCmd
}

func loadConfig() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level), os.Stderr), nil
}

func newDeviationsCmd() *cobra.Command {
	var n int
	var trd, ovr, direction string
	var detailed bool
	var observed int

	cmd := &cobra.Command{
		Use:   "deviations",
		Short: "Compute the allowed number of deviations for one sample",
		Long: `Compute the allowed number of deviations for a sample size, tolerable rate of
deviation and risk of overreliance.

"less" tests effectiveness (the true deviation rate is below the tolerable rate);
"greater" tests ineffectiveness (the true deviation rate is above it).

Example: fam450 deviations --n 158 --trd 5% --ovr 10% --direction both --detailed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			trdValue, err := parseRateFlag("trd", trd, 0)
			if err != nil {
				return err
			}
			ovrValue, err := parseRateFlag("ovr", ovr, cfg.Tables.OVR)
			if err != nil {
				return err
			}
			dirs, err := parseDirections(direction)
			if err != nil {
				return err
			}

			var obs *int
			if cmd.Flags().Changed("observed") {
				obs = &observed
			}
			return runDeviations(cmd.OutOrStdout(), n, trdValue, ovrValue, dirs, detailed, obs)
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Sample size")
	cmd.Flags().StringVar(&trd, "trd", "", "Tolerable rate of deviation (0.05 or 5%)")
	cmd.Flags().StringVar(&ovr, "ovr", "", "Risk of overreliance (default FAM450_OVR or 10%)")
	cmd.Flags().StringVar(&direction, "direction", "less", "Alternative hypothesis: less|greater|both")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Print hypotheses and the full interpretation")
	cmd.Flags().IntVar(&observed, "observed", 0, "Deviations actually observed; prints the resulting decision")
	_ = cmd.MarkFlagRequired("n")
	_ = cmd.MarkFlagRequired("trd")

	return cmd
}

func runDeviations(out io.Writer, n int, trd, ovr float64, dirs []sampling.Direction, detailed bool, observed *int) error {
	audit, err := sampling.NewAuditTest(n, trd, ovr)
	if err != nil {
		return err
	}

	for i, dir := range dirs {
		if i > 0 {
			fmt.Fprintln(out)
		}

		res, err := audit.Search(dir)
		if err != nil {
			if core.IsUnattainable(err) && len(dirs) > 1 {
				fmt.Fprintf(out, "%s: %v\n", dir, err)
				continue
			}
			return err
		}

		if detailed {
			fmt.Fprintln(out, sampling.DetailedResults(res))
		} else {
			fmt.Fprintln(out, sampling.SimpleResults(res))
		}

		if observed != nil {
			decision, err := sampling.Interpret(res, *observed)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, decision.Conclusion)
		}
	}
	return nil
}

func newTableCmd() *cobra.Command {
	var direction, ovr, sizes, rates string
	var xlsxPath, csvPath string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Generate allowed-deviation tables over a grid of sample sizes and tolerable rates",
		Long: `Generate allowed-deviation tables. Without flags this reproduces FAM 450 tables 1 and 2
(sample sizes 45, 78, 105, 132, 158; tolerable rates 5% and 10%; 10% risk of overreliance).
Cells where no deviation count reaches the requested confidence show "n/a".

Example: fam450 table --direction both --sizes 25,60,158 --rates 2%,5% --xlsx tables.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ovrValue, err := parseRateFlag("ovr", ovr, cfg.Tables.OVR)
			if err != nil {
				return err
			}
			dirs, err := parseDirections(direction)
			if err != nil {
				return err
			}
			grid, err := parseGrid(sizes, rates, cfg.Tables.Grid)
			if err != nil {
				return err
			}

			svc := app.NewTableService(cfg.Tables.Workers, logger)
			tables := make([]*sampling.ResultTable, 0, len(dirs))
			for _, dir := range dirs {
				table, err := svc.Generate(cmd.Context(), dir, ovrValue, grid)
				if err != nil {
					return err
				}
				tables = append(tables, table)
			}

			if err := report.NewMarkdownRenderer().Export(cmd.OutOrStdout(), tables...); err != nil {
				return err
			}
			if xlsxPath != "" {
				if err := exportFile(xlsxPath, excel.NewTableWriter(), tables); err != nil {
					return err
				}
				logger.Info("wrote %s", xlsxPath)
			}
			if csvPath != "" {
				if err := exportFile(csvPath, excel.NewCSVWriter(), tables); err != nil {
					return err
				}
				logger.Info("wrote %s", csvPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "both", "Alternative hypothesis: less|greater|both")
	cmd.Flags().StringVar(&ovr, "ovr", "", "Risk of overreliance (default FAM450_OVR or 10%)")
	cmd.Flags().StringVar(&sizes, "sizes", "", "Comma-separated sample sizes (default FAM450_SAMPLE_SIZES)")
	cmd.Flags().StringVar(&rates, "rates", "", "Comma-separated tolerable rates (default FAM450_RATES)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the tables to this XLSX file")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the tables to this CSV file")

	return cmd
}

func newReportCmd() *cobra.Command {
	var n int
	var trd, ovr, htmlPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render FAM 450 tables, and optionally one sample's interpretation, as Markdown or HTML",
		Long: `Render both allowed-deviation tables for the configured grid. With --n and --trd the
report also interprets that sample in both directions.

Example: fam450 report --n 158 --trd 5% --html report.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ovrValue, err := parseRateFlag("ovr", ovr, cfg.Tables.OVR)
			if err != nil {
				return err
			}

			tables, err := app.NewTableService(cfg.Tables.Workers, logger).Tables(cmd.Context(), ovrValue, cfg.Tables.Grid)
			if err != nil {
				return err
			}
			doc := report.Document{Tables: []*sampling.ResultTable{tables.Less, tables.Greater}}

			if cmd.Flags().Changed("n") {
				trdValue, err := parseRateFlag("trd", trd, 0)
				if err != nil {
					return err
				}
				audit, err := sampling.NewAuditTest(n, trdValue, ovrValue)
				if err != nil {
					return err
				}
				for _, dir := range sampling.Directions() {
					res, err := audit.Search(dir)
					if core.IsUnattainable(err) {
						logger.Warn("%v", err)
						continue
					}
					if err != nil {
						return err
					}
					doc.Results = append(doc.Results, res)
				}
			}

			if htmlPath == "" {
				return report.NewMarkdownRenderer().Write(cmd.OutOrStdout(), doc)
			}
			f, err := os.Create(htmlPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", htmlPath, err)
			}
			defer f.Close()
			if err := report.NewHTMLRenderer().Write(f, doc); err != nil {
				return err
			}
			logger.Info("wrote %s", htmlPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "Sample size to interpret")
	cmd.Flags().StringVar(&trd, "trd", "", "Tolerable rate of deviation for --n")
	cmd.Flags().StringVar(&ovr, "ovr", "", "Risk of overreliance (default FAM450_OVR or 10%)")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML page here instead of Markdown to stdout")

	return cmd
}

func exportFile(path string, exporter ports.TableExporter, tables []*sampling.ResultTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := exporter.Export(f, tables...); err != nil {
		f.Close()
		return apperrors.ExportFailed(exporter.Extension(), err)
	}
	return f.Close()
}

func parseRateFlag(name, raw string, def float64) (float64, error) {
	if raw == "" {
		if def == 0 {
			return 0, core.NewInvalidParameterError(name, "is required")
		}
		return def, nil
	}
	v, err := config.ParseRate(raw)
	if err != nil {
		return 0, core.NewInvalidParameterError(name, err.Error())
	}
	return v, nil
}

func parseDirections(raw string) ([]sampling.Direction, error) {
	if raw == "both" {
		return sampling.Directions(), nil
	}
	dir, err := sampling.ParseDirection(raw)
	if err != nil {
		return nil, err
	}
	return []sampling.Direction{dir}, nil
}

func parseGrid(sizes, rates string, def sampling.Grid) (sampling.Grid, error) {
	n, err := config.ParseSampleSizes(sizes, def.SampleSizes)
	if err != nil {
		return sampling.Grid{}, core.NewInvalidParameterError("sizes", err.Error())
	}
	trd, err := config.ParseRates(rates, def.Rates)
	if err != nil {
		return sampling.Grid{}, core.NewInvalidParameterError("rates", err.Error())
	}
	return sampling.Grid{SampleSizes: n, Rates: trd}, nil
}
