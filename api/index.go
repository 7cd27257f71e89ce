package handler

import (
	"context"
	"net/http"

	"github.com/arnavshah/roster-engine-go/pkg/config"
	"github.com/arnavshah/roster-engine-go/pkg/handlers"
	"github.com/arnavshah/roster-engine-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

var (
	r       *gin.Engine
	initErr error
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: "json", Output: "stdout"})

	gin.SetMode(gin.ReleaseMode)
	h, err := handlers.Setup(context.Background(), cfg)
	if err != nil {
		initErr = err
		return
	}
	r = handlers.NewRouter(h)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	if initErr != nil {
		logger.Error().Err(initErr).Msg("startup failed")
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	r.ServeHTTP(w, req)
}
