package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raykavin/vitaltrend"
	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/raykavin/vitaltrend/pkg/plot"
	"github.com/raykavin/vitaltrend/pkg/source"
	"github.com/raykavin/vitaltrend/pkg/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

const defaultDatabase = "vitaltrend.db"

// Command line flags
var (
	// Storage flags shared by every command
	databaseFile string
	sqliteFile   string
	since        string

	// Serve command flags
	port            int
	refreshInterval string

	// Import command flags
	logsFile string
	jabsFile string

	// Fetch command flags
	trackerURL string
	retries    int

	// Tune command flags
	metricName string
	top        int
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "vitaltrend",
		Short:   "Health log trends colored by medication dose",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&databaseFile, "db", defaultDatabase, "buntdb database file")
	rootCmd.PersistentFlags().StringVar(&sqliteFile, "sqlite", "", "SQLite database file, used instead of --db")
	rootCmd.PersistentFlags().StringVar(&since, "since", "", "Only chart records newer than this (e.g. 12w, 90d)")

	// Add commands
	rootCmd.AddCommand(buildServeCmd(), buildSummaryCmd(), buildImportCmd(), buildFetchCmd(), buildTuneCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chart data over HTTP",
		RunE:  runServe,
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	serveCmd.Flags().StringVarP(&refreshInterval, "refresh", "r", "5m", "Chart refresh interval (e.g. 30s, 5m)")

	return serveCmd
}

func buildSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print metric, dose segment and residual summaries",
		RunE:  runSummary,
	}
}

func buildImportCmd() *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import logs and jabs from CSV files",
		RunE:  runImport,
	}

	importCmd.Flags().StringVarP(&logsFile, "logs", "l", "", "Logs CSV file (date,time,weight,body_fat,muscle,visceral_fat,sleep,notes)")
	importCmd.Flags().StringVarP(&jabsFile, "jabs", "j", "", "Jabs CSV file (date,time,dose,notes)")

	return importCmd
}

func buildFetchCmd() *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Copy the records of a remote tracker into local storage",
		RunE:  runFetch,
	}

	fetchCmd.Flags().StringVarP(&trackerURL, "url", "u", "", "Tracker base URL (e.g. http://localhost:5000)")
	fetchCmd.Flags().IntVar(&retries, "retries", 3, "Retries of a failed request")

	// Required flags
	fetchCmd.MarkFlagRequired("url")

	return fetchCmd
}

func buildTuneCmd() *cobra.Command {
	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "Cross validate the smoothing bandwidth of a metric",
		RunE:  runTune,
	}

	tuneCmd.Flags().StringVarP(&metricName, "metric", "m", string(core.MetricWeight), "Metric to tune (weight, body_fat, muscle, visceral_fat, sleep)")
	tuneCmd.Flags().IntVarP(&top, "top", "n", 5, "Number of results to show")

	return tuneCmd
}

// openStorage opens the SQLite file when given, the buntdb file otherwise
func openStorage() (core.Storage, error) {
	if sqliteFile != "" {
		db, err := storage.FromSQLite(sqliteFile)
		if err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := storage.FromFile(databaseFile)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func newTracker(store core.Storage) (*vitaltrend.Tracker, error) {
	options := []vitaltrend.Option{vitaltrend.WithLogger(vitaltrend.DefaultLog)}

	if since != "" {
		window, err := str2duration.ParseDuration(since)
		if err != nil {
			return nil, fmt.Errorf("invalid since duration: %w", err)
		}
		options = append(options, vitaltrend.WithSince(window))
	}

	return vitaltrend.NewTracker(store, options...), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	interval, err := str2duration.ParseDuration(refreshInterval)
	if err != nil {
		return fmt.Errorf("invalid refresh interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	tracker, err := newTracker(store)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := tracker.Refresh(ctx); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := tracker.Refresh(ctx); err != nil && ctx.Err() == nil {
					vitaltrend.DefaultLog.WithError(err).Error("failed to refresh charts")
				}
			}
		}
	}()

	server := plot.NewServer(tracker, plot.WithPort(port), plot.WithLogger(vitaltrend.DefaultLog))
	return server.Start(ctx)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	tracker, err := newTracker(store)
	if err != nil {
		return err
	}

	return tracker.Summary(cmd.Context(), os.Stdout)
}

func runTune(cmd *cobra.Command, _ []string) error {
	metric, err := core.ParseMetric(metricName)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	tracker, err := newTracker(store)
	if err != nil {
		return err
	}

	results, err := tracker.TuneBandwidth(cmd.Context(), metric, top)
	if err != nil {
		return err
	}

	vitaltrend.WriteTuning(os.Stdout, results)
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	if logsFile == "" && jabsFile == "" {
		return fmt.Errorf("at least one of --logs and --jabs must be provided")
	}

	var records vitaltrend.Records

	if logsFile != "" {
		file, err := os.Open(logsFile)
		if err != nil {
			return fmt.Errorf("failed to open logs file: %w", err)
		}
		defer file.Close()

		if records.Logs, err = source.ReadLogs(file); err != nil {
			return fmt.Errorf("failed to read %s: %w", logsFile, err)
		}
	}

	if jabsFile != "" {
		file, err := os.Open(jabsFile)
		if err != nil {
			return fmt.Errorf("failed to open jabs file: %w", err)
		}
		defer file.Close()

		if records.Jabs, err = source.ReadJabs(file); err != nil {
			return fmt.Errorf("failed to read %s: %w", jabsFile, err)
		}
	}

	return importRecords(cmd.Context(), records)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	client, err := source.NewClient(trackerURL,
		source.WithMaxRetries(retries),
		source.WithLogger(vitaltrend.DefaultLog),
	)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var records vitaltrend.Records

	if records.Logs, err = client.Logs(ctx); err != nil {
		return fmt.Errorf("failed to fetch logs: %w", err)
	}
	if records.Jabs, err = client.Jabs(ctx); err != nil {
		return fmt.Errorf("failed to fetch jabs: %w", err)
	}
	if records.Measurements, err = client.Measurements(ctx); err != nil {
		return fmt.Errorf("failed to fetch body measurements: %w", err)
	}

	return importRecords(ctx, records)
}

// importRecords stores the records locally with a progress bar
func importRecords(ctx context.Context, records vitaltrend.Records) error {
	db, err := openStorage()
	if err != nil {
		return err
	}
	defer db.Close()

	// Setup progress tracking
	progressBar := progressbar.Default(int64(records.Len()))

	result, err := vitaltrend.Import(ctx, db, records, func() {
		if err := progressBar.Add(1); err != nil {
			vitaltrend.DefaultLog.Warnf("update progressbar fail: %v", err)
		}
	})
	if closeErr := progressBar.Close(); closeErr != nil {
		vitaltrend.DefaultLog.Warnf("Failed to close progress bar: %s", closeErr.Error())
	}
	if err != nil {
		return err
	}

	vitaltrend.DefaultLog.WithFields(map[string]any{
		"logs":         result.Logs,
		"jabs":         result.Jabs,
		"measurements": result.Measurements,
		"skipped":      result.Skipped,
	}).Info("records imported")

	return nil
}
