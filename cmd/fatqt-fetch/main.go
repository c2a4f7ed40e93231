package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fatqt/internal/archive"
	"fatqt/internal/catalog"
	"fatqt/internal/config"
	"fatqt/internal/marketdata"
	"fatqt/internal/store"
	"fatqt/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfgPath := "config/fatqt.yaml"
	if p := os.Getenv("FATQT_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("loading config: %v", err)
		}
		cfg = config.Default()
	}

	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	cat, err := catalog.Open(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening ticker catalog: %v", err)
	}
	defer cat.Close()

	yahoo := marketdata.NewYahooClient(cfg.Yahoo, cfg.Fetch.RateLimitPerMin)
	pstore := store.NewParquetStore(cfg.Storage.DataDir)

	archiver := archive.NewArchiver(
		cat,
		yahoo,
		pstore,
		cfg.Fetch.StartDate,
		cfg.Fetch.MaxWorkers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("starting %s\n", archiver.Name())
	if err := archiver.Run(ctx); err != nil {
		log.Fatalf("archive error: %v", err)
	}
}
