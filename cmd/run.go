package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erimojdehi/aris-driver-check/internal/config"
	"github.com/erimojdehi/aris-driver-check/internal/service"
	"github.com/erimojdehi/aris-driver-check/internal/store"
)

var runDate string
var runInput string
var runWindow int
var runNoEmail bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily licence check over an export file",
	Long: `Run parses the day's fixed-format export, stores the snapshot,
compares it with the previous day's snapshot, and delivers the change
report and upload batch.

Examples:
  # Run for today over the conventional input path
  ./driver-check run

  # Run for a specific date with an explicit file
  ./driver-check run --date 2025-01-15 --input /tmp/export.txt

  # Widen the urgent expiry window and skip email delivery
  ./driver-check run --window 7 --no-email`,
	Run: runCheck,
}

func init() {
	rootCmd.AddCommand(runCmd)

	today := time.Now().Format("2006-01-02")
	runCmd.Flags().StringVarP(&runDate, "date", "d", today, "Date to run the check for (YYYY-MM-DD)")
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Path to the export file (default <base_dir>/input/input_<date>.txt)")
	runCmd.Flags().IntVarP(&runWindow, "window", "w", 0, "Urgent expiry window in days (default from config)")
	runCmd.Flags().BoolVar(&runNoEmail, "no-email", false, "Skip SMTP delivery; reports still land on disk")
}

func runCheck(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	date, err := time.Parse("2006-01-02", runDate)
	if err != nil {
		log.Fatalf("Invalid date format: %v", err)
	}

	inputPath := runInput
	if inputPath == "" {
		inputPath = filepath.Join(cfg.InputDir(), fmt.Sprintf("input_%s.txt", runDate))
	}
	input, err := os.Open(inputPath)
	if err != nil {
		log.Fatalf("Failed to open input %s: %v", inputPath, err)
	}
	defer input.Close()

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	var fileStore *store.XMLFileStore
	var runner *service.Runner

	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := store.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		runner = service.NewRunner(store.NewSnapshotStore(db))
		runner.Runs = store.NewRunStore(db)

		if roster, err := service.LoadRoster(cfg.Paths.Roster); err != nil {
			log.Printf("Warning: roster not loaded: %v", err)
		} else {
			runner.Roster = roster
			if n, err := store.NewOperatorStore(db).ImportRoster(ctx, roster); err != nil {
				log.Printf("Warning: roster not imported: %v", err)
			} else {
				log.Printf("Roster imported: %d operators", n)
			}
		}
	} else {
		fileStore, err = store.NewXMLFileStore(cfg.OutputDir())
		if err != nil {
			log.Fatalf("Failed to open snapshot store: %v", err)
		}
		runner = service.NewRunner(fileStore)

		if roster, err := service.LoadRoster(cfg.Paths.Roster); err != nil {
			log.Printf("Warning: roster not loaded: %v", err)
		} else {
			runner.Roster = roster
		}
	}

	fileSink, err := service.NewFileSink(cfg.ReportDir())
	if err != nil {
		log.Fatalf("Failed to open report dir: %v", err)
	}
	sink := service.MultiSink{fileSink}
	if cfg.Email.Enabled && !runNoEmail {
		sink = append(sink, service.NewMailer(cfg.SMTPAddr(), cfg.Email.FromAddr, cfg.Email.Recipients))
	}
	runner.Sink = sink

	batch := service.NewBatchWriter(cfg.BatchDir())
	runner.Uploader = batch
	if cfg.Loader.Host != "" {
		runner.Loader = service.NewLoaderClient(cfg.Loader.Host, cfg.Loader.Port)
	}
	if runWindow > 0 {
		runner.WindowDays = runWindow
	} else {
		runner.WindowDays = cfg.Policy.UrgentWindowDays
	}

	stats, err := runner.Run(ctx, date, input)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Run cancelled")
			os.Exit(1)
		}
		log.Fatalf("Run failed: %v", err)
	}
	runner.PrintSummary(stats)

	if err := batch.Prune(date); err != nil {
		log.Printf("Warning: failed to prune old batches: %v", err)
	}
	if fileStore != nil {
		maxAge := time.Duration(cfg.Policy.KeepSnapshotHours) * time.Hour
		if err := fileStore.Prune(time.Now(), maxAge); err != nil {
			log.Printf("Warning: failed to prune old snapshots: %v", err)
		}
	}

	if stats.ParseErrors > 0 {
		os.Exit(1)
	}
}
