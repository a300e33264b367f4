package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/myplan/internal/config"
	"github.com/meltforce/myplan/internal/importer"
	"github.com/meltforce/myplan/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	catalogPath := flag.String("catalog", "", "path to workout catalog YAML (required)")
	login := flag.String("user", "local", "login of the user the plan is created for")
	dryRun := flag.Bool("dry-run", false, "validate and report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *catalogPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: myplan-import -config config.yaml -catalog catalog.yaml [-user login] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	version, err := storage.RunMigrations(dsn, "migrations")
	if err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "schema_version", version)

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	}

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Run import
	imp := importer.New(db, log, *dryRun)
	stats, err := imp.ImportFile(ctx, *catalogPath, *login)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"workouts_received", stats.WorkoutsReceived,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_updated", stats.WorkoutsUpdated,
		"days_received", stats.DaysReceived,
		"plan_id", stats.PlanID,
	)
}
