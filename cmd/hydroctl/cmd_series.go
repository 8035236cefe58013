package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"hydrodash/internal/api"
	"hydrodash/internal/cachebust"
	"hydrodash/internal/config"
	"hydrodash/internal/logging"
	"hydrodash/internal/models"
	"hydrodash/internal/series"
	"hydrodash/internal/stats"
)

func newSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series PATH",
		Short: "Load a forecast CSV and print its date,value rows",
		Long: `Fetches PATH (relative to --base-url, or an absolute URL) with the
current cache bucket appended, then prints the parsed series in date order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseURL, _ := cmd.Flags().GetString("base-url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			window, _ := cmd.Flags().GetDuration("window")
			summary, _ := cmd.Flags().GetBool("summary")

			logger := logging.NewWithWriter(cmd.ErrOrStderr(), slog.LevelWarn, version, "hydroctl")
			loader := series.NewLoader(api.NewClient(baseURL, timeout), cachebust.New(window), series.WithLogger(logger))

			points, err := loader.LoadSeries(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			writeSeries(cmd.OutOrStdout(), points)
			if summary {
				writeSummary(cmd.ErrOrStderr(), stats.Summarize(points, stats.DefaultZScoreThreshold))
			}
			return nil
		},
	}
	cmd.Flags().String("base-url", config.Default().Resources.BaseURL, "base URL resource paths are resolved against")
	cmd.Flags().Duration("timeout", config.Default().Resources.Timeout, "HTTP timeout")
	cmd.Flags().Duration("window", cachebust.DefaultWindow, "cache bucket window")
	cmd.Flags().Bool("summary", false, "print count, range and outliers to stderr")
	return cmd
}

func writeSeries(w io.Writer, points []models.SeriesPoint) {
	fmt.Fprintf(w, "%s,%s\n", series.DateColumn, series.ValueColumn)
	for _, p := range points {
		fmt.Fprintf(w, "%s,%g\n", series.FormatDate(p.Time), p.Value)
	}
}

func writeSummary(w io.Writer, s models.SeriesSummary) {
	fmt.Fprintf(w, "points: %d  range: %s .. %s\n", s.Count, series.FormatDate(s.First), series.FormatDate(s.Last))
	fmt.Fprintf(w, "min: %.2f  max: %.2f  mean: %.2f  std dev: %.2f\n", s.Min, s.Max, s.Mean, s.StdDev)
	for _, o := range s.Outliers {
		fmt.Fprintf(w, "  outlier %s: %.2f (z=%.2f, %s)\n", series.FormatDate(o.Time), o.Value, o.ZScore, o.Severity)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Parse(path)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.SlogLevel(), version, "hydroctl")
	return cfg, logger, nil
}
