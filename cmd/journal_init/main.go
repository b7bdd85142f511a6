package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/SimoHua/symphonyx/internal/config"
	"github.com/SimoHua/symphonyx/internal/logger"
	"github.com/SimoHua/symphonyx/internal/store"
)

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	rosterFile := flag.String("roster", "", "roster yaml to freeze (optional)")
	date := flag.String("date", "", "period date YYYY-MM-DD, defaults to today")
	kinds := flag.String("kinds", "day,week", "archive kinds to freeze")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	db, err := cfg.OpenGormDB()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	// Step 1: schema
	if err := db.WithContext(ctx).AutoMigrate(store.Models()...); err != nil {
		log.Fatal("migrate failed:", err)
	}
	logger.Info("schema: tables migrated", "count", len(store.Models()))

	if *rosterFile == "" {
		logger.Info("=== all done ===")
		return
	}

	// Step 2: freeze roster
	loc := cfg.Journal.Location()
	at := time.Now().In(loc)
	if *date != "" {
		at, err = time.ParseInLocation(time.DateOnly, *date, loc)
		if err != nil {
			log.Fatal("bad -date:", err)
		}
	}
	if err := freezeRoster(ctx, *rosterFile, *kinds, at, store.NewUserStore(db), store.NewArchiveStore(db)); err != nil {
		log.Fatal("roster freeze failed:", err)
	}

	logger.Info("=== all done ===")
}
