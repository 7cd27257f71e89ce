package main

import (
	"context"
	"os"

	"github.com/arnavshah/roster-engine-go/pkg/config"
	"github.com/arnavshah/roster-engine-go/pkg/handlers"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: "stdout",
	})

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	h, err := handlers.Setup(context.Background(), cfg)
	if err != nil {
		logger.Error().Err(err).Msg("could not initialise")
		os.Exit(1)
	}

	r := handlers.NewRouter(h)

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error().Err(err).Msg("could not run server")
		os.Exit(1)
	}
}
