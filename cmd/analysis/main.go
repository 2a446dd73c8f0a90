package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/datamilo/StockPriceStats/internal/aggregator"
	"github.com/datamilo/StockPriceStats/internal/config"
	"github.com/datamilo/StockPriceStats/internal/engine"
	"github.com/datamilo/StockPriceStats/internal/pricestore"
	"github.com/datamilo/StockPriceStats/internal/recorder"
	"github.com/datamilo/StockPriceStats/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockPriceStats analysis starting...")

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	var (
		configFlag   = flag.String("config", cfgPath, "path to YAML config")
		fullFlag     = flag.Bool("full", false, "discard persisted results and recompute from scratch")
		scheduleFlag = flag.Bool("schedule", false, "keep running and apply incremental updates on the configured cron")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0755); err != nil {
		log.Fatalf("[FATAL] create database dir: %v", err)
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open recorder: %v", err)
	}
	defer rec.Close()

	if *scheduleFlag {
		runScheduled(cfg, rec)
		return
	}
	if err := runOnce(cfg, rec, *fullFlag); err != nil {
		log.Fatalf("[FATAL] analysis run: %v", err)
	}
}

// runOnce executes one complete batch: load prices, run the engine, and
// export the per-window tables and matrices for downstream consumers.
func runOnce(cfg *config.Config, rec recorder.Recorder, full bool) error {
	points, err := pricestore.LoadCSV(cfg.Data.FilteredPricesFile)
	if err != nil {
		return err
	}
	store := pricestore.NewStore(points)
	log.Printf("[INFO] loaded %d price rows for %d symbols from %s",
		len(points), len(store.Symbols()), cfg.Data.FilteredPricesFile)

	specs := cfg.WindowSpecs()
	eng := engine.New(store, rec, specs, cfg.Analysis.Workers)

	var summary *engine.Summary
	if full {
		summary, err = eng.RunFull()
	} else {
		summary, err = eng.RunIncremental()
	}
	if err != nil {
		return err
	}
	log.Printf("[INFO] run summary:\n%s", summary)

	if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
		return err
	}
	for _, spec := range specs {
		rs, err := rec.LoadResultSet(spec.WindowDays)
		if err != nil {
			return err
		}
		path, err := recorder.ExportResults(rs, spec, cfg.Export.Dir)
		if err != nil {
			return err
		}
		log.Printf("[INFO] exported %s (%d rows)", path, rs.Len())

		matrix := aggregator.BuildMatrix(rs)
		if path, err = recorder.ExportMatrix(matrix, spec, cfg.Export.Dir); err != nil {
			return err
		}
		log.Printf("[INFO] exported %s", path)

		rollups := aggregator.SymbolRollups(rs)
		if path, err = recorder.ExportRollups(rollups, spec, cfg.Export.Dir); err != nil {
			return err
		}
		log.Printf("[INFO] exported %s", path)

		var changes []aggregator.ChangeStats
		for _, symbol := range store.Symbols() {
			stats, err := aggregator.SupportChangeStats(store.Series(symbol), spec.WindowDays)
			if err != nil {
				log.Printf("[WARN] change stats for %s: %v", symbol, err)
				continue
			}
			changes = append(changes, stats)
		}
		if path, err = recorder.ExportChangeStats(changes, spec, cfg.Export.Dir); err != nil {
			return err
		}
		log.Printf("[INFO] exported %s", path)
	}
	return nil
}

// runScheduled applies incremental updates on the configured cron until
// interrupted.
func runScheduled(cfg *config.Config, rec recorder.Recorder) {
	sched := scheduler.NewScheduler()
	if err := sched.RegisterUpdate(cfg.Schedule.UpdateCron, func() {
		log.Println("[INFO] scheduled incremental update starting")
		if err := runOnce(cfg, rec, false); err != nil {
			log.Printf("[ERROR] scheduled update: %v", err)
		}
	}); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	log.Printf("[INFO] scheduled mode active (%s). Press Ctrl+C to stop.", cfg.Schedule.UpdateCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[INFO] shutdown signal received, stopping...")
}
