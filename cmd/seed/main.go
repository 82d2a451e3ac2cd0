package main

import (
	"context"
	"flag"
	"log"

	"github.com/LordMilo/SmartTaskManager/internal/config"
	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/remote"

	sdk "github.com/matrixorigin/moi-go-sdk"
)

func main() {
	configFile := flag.String("config", "etc/config-dev.yaml", "config file")
	withCatalog := flag.Bool("catalog", false, "also create the MOI catalog table and NL2SQL knowledge")
	flag.Parse()

	logger.Init(config.LogConfig{Level: "info", Console: true})

	cfg := config.Load(*configFile)
	ctx := context.Background()

	// Step 1: demo roster and routine library
	client, err := openRemote(ctx, cfg)
	if err != nil {
		log.Fatal("remote store:", err)
	}
	if err := seedDemo(ctx, client); err != nil {
		log.Fatal("seed failed:", err)
	}

	if !*withCatalog {
		logger.Info("=== all done ===")
		return
	}

	raw, err := cfg.NewRawClient()
	if err != nil {
		log.Fatal(err)
	}
	catalogID := sdk.CatalogID(cfg.MOI.CatalogID)
	if catalogID == 0 {
		catalogID = 1
	}

	// Step 2: catalog database + tasks table
	if _, err := initCatalog(ctx, raw, catalogID, cfg.Database.Name); err != nil {
		log.Fatal("catalog init failed:", err)
	}

	// Step 3: NL2SQL knowledge
	if err := initKnowledge(ctx, raw); err != nil {
		log.Fatal("knowledge init failed:", err)
	}

	logger.Info("=== all done ===")
}

func openRemote(ctx context.Context, cfg *config.Config) (remote.Client, error) {
	if cfg.Remote.Backend == "mysql" {
		db, err := cfg.OpenGormDB()
		if err != nil {
			return nil, err
		}
		s := remote.NewSQL(db)
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
		logger.Info("seed: schema migrated")
		return s, nil
	}
	return remote.NewREST(cfg.Remote.URL, cfg.Remote.Key), nil
}
