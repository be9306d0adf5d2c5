package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-editor/api"
	"profile-editor/config"
	_ "profile-editor/docs"
)

// @title Profile Editor API
// @version 1.0
// @description Profile screen backend: inline field edits and profile photo sync.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.EnvFileLoaded {
		logger.Warn(".env file not found, using system environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	app, err := api.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to start application", zap.Error(err))
	}
	defer app.Close()

	port := ":" + cfg.Port
	logger.Info("server starting",
		zap.String("port", port),
		zap.String("environment", cfg.AppEnv),
		zap.String("swagger", "http://localhost:"+cfg.Port+"/swagger/index.html"),
	)

	if err := app.Router.Run(port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
