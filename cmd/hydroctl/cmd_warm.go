package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"hydrodash/internal/app"
	"hydrodash/internal/config"
	"hydrodash/internal/models"
)

// seriesLoader is satisfied by series.Loader
type seriesLoader interface {
	LoadSeries(ctx context.Context, path string) ([]models.SeriesPoint, error)
}

// WarmResult holds the outcome for a single station
type WarmResult struct {
	Station        string
	Points         int
	Error          error
	ProcessingTime time.Duration
}

func newWarmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Load every station's forecast series into the cache",
		Long: `Loads the forecast series of every station that has one. Only the redis
cache backend is shared with the server; with memory or none the loads are
a reachability and parse check and nothing stays cached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")

			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			shared := cfg.Cache.Backend == config.CacheRedis
			if !shared {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache backend %q does not outlive this process; running as a load check only\n", cfg.Cache.Backend)
			}

			var targets []models.Station
			for _, st := range a.Directory.All() {
				if st.HasForecast() {
					targets = append(targets, st)
				}
			}

			results := warmAll(cmd.Context(), a.Loader, targets, workers)
			if failed := report(cmd.OutOrStdout(), results, shared); failed > 0 {
				return fmt.Errorf("%d of %d stations failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().Int("workers", 8, "number of concurrent loads")
	return cmd
}

// warmAll loads the series of every station with a bounded worker pool.
// Results are returned in completion order.
func warmAll(ctx context.Context, loader seriesLoader, targets []models.Station, numWorkers int) []WarmResult {
	if len(targets) == 0 {
		return nil
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if len(targets) < numWorkers {
		numWorkers = len(targets)
	}

	jobs := make(chan models.Station, len(targets))
	results := make(chan WarmResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(ctx, loader, jobs, results, &wg)
	}

	for _, st := range targets {
		jobs <- st
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]WarmResult, 0, len(targets))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func worker(ctx context.Context, loader seriesLoader, jobs <-chan models.Station, results chan<- WarmResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for st := range jobs {
		startTime := time.Now()
		points, err := loader.LoadSeries(ctx, st.CSVPath)
		results <- WarmResult{
			Station:        st.Key,
			Points:         len(points),
			Error:          err,
			ProcessingTime: time.Since(startTime),
		}
	}
}

// report prints one line per station and returns the number of failures.
// shared is false when the loads did not fill a cache the server reads.
func report(w io.Writer, results []WarmResult, shared bool) int {
	failed := 0
	for i, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(w, "[%d/%d] FAIL %s: %v (%.1fs)\n", i+1, len(results), r.Station, r.Error, r.ProcessingTime.Seconds())
			continue
		}
		fmt.Fprintf(w, "[%d/%d] ok   %s: %d points (%.1fs)\n", i+1, len(results), r.Station, r.Points, r.ProcessingTime.Seconds())
	}
	verb := "warmed"
	if !shared {
		verb = "checked"
	}
	fmt.Fprintf(w, "%s %d stations, %d failed\n", verb, len(results)-failed, failed)
	return failed
}
