package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jackson-nestelroad/battler-go/internal/config"
	"github.com/jackson-nestelroad/battler-go/internal/data"
	"github.com/jackson-nestelroad/battler-go/internal/rng"
)

var (
	configPath = flag.String("config", "", "path to configuration file (optional)")
	liveAddr   = flag.String("live", "", "if set, serve a live spectator websocket on this address instead of running the scripted demo")
	version    = "dev"
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting battlesim", zap.String("version", version))

	loader := data.NewLoader(cfg.Data.Root)
	store, err := loader.Load(context.Background())
	if err != nil {
		logger.Fatal("failed to load data", zap.Error(err))
	}
	logger.Info("data loaded",
		zap.Int("moves", len(store.Moves)),
		zap.Int("abilities", len(store.Abilities)),
		zap.Int("items", len(store.Items)),
		zap.Int("species", len(store.SpeciesMap)),
		zap.Int("conditions", len(store.Conditions)),
	)

	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = 1
	}
	prng := rng.New(seed)

	if *liveAddr != "" {
		runLiveServer(*liveAddr, store, prng, logger)
		return
	}

	b, err := runScriptedDemo(store, prng, logger)
	if err != nil {
		logger.Fatal("demo battle failed", zap.Error(err))
	}
	for _, line := range b.Log().Lines() {
		fmt.Println(line)
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
