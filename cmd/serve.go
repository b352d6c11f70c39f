package cmd

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"

	"github.com/erimojdehi/aris-driver-check/internal/config"
	"github.com/erimojdehi/aris-driver-check/internal/handlers"
	"github.com/erimojdehi/aris-driver-check/internal/store"
)

var port string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the driver-check web server",
	Long:  `Start the web server that exposes stored snapshots, runs and the operator roster.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Use PORT env var if set, otherwise use flag value
		if envPort := os.Getenv("PORT"); envPort != "" && port == "8080" {
			port = envPort
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if cfg.DatabaseURL == "" {
			log.Fatal("serve requires database_url in the config or DATABASE_URL in the environment")
		}

		db, err := store.NewDB(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Initialize stores
		snapshotStore := store.NewSnapshotStore(db)
		runStore := store.NewRunStore(db)
		operatorStore := store.NewOperatorStore(db)

		app := fiber.New(fiber.Config{
			AppName: "Driver Check",
		})

		app.Use(logger.New())

		// Routes
		app.Get("/", handlers.HomeHandler(snapshotStore, runStore, operatorStore))

		// Run routes
		app.Get("/runs", handlers.RunsHandler(runStore))
		app.Get("/runs/:date", handlers.RunDetailHandler(runStore))

		// Snapshot routes
		app.Get("/snapshots", handlers.SnapshotsHandler(snapshotStore))
		app.Get("/snapshots/:date", handlers.SnapshotDetailHandler(snapshotStore))
		app.Get("/changes", handlers.ChangesHandler(snapshotStore))

		// Roster routes
		app.Get("/operators", handlers.OperatorsHandler(operatorStore))
		app.Get("/operators/:licence", handlers.OperatorDetailHandler(operatorStore))
		app.Get("/departments", handlers.DepartmentsHandler(operatorStore))

		log.Printf("Starting server on :%s", port)
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to run the server on")
}
