package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-editor/config"
	"profile-editor/controllers"
	"profile-editor/libs"
	"profile-editor/middleware"
	"profile-editor/repositories"
	"profile-editor/routes"
	"profile-editor/services"
)

// App is the assembled HTTP application.
type App struct {
	Router *gin.Engine
	close  []func()
}

func (a *App) Close() {
	for i := len(a.close) - 1; i >= 0; i-- {
		a.close[i]()
	}
}

// newAssetStore also returns the handler serving local uploads, nil for
// Cloudinary.
func newAssetStore(cfg *config.Config, logger *zap.Logger) (services.AssetStore, gin.HandlerFunc, error) {
	if cfg.StorageDriver == config.StorageCloudinary {
		store, err := libs.NewCloudinaryStore(libs.CloudinaryConfig{
			URL:       cfg.CloudinaryURL,
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		return store, nil, err
	}
	store, err := libs.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, store.ServeObject, nil
}

// NewApp connects the record store, cache and asset store and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{}

	pool, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.close = append(app.close, func() { config.CloseDB(pool, logger) })

	if err := config.RunMigrations(cfg, logger); err != nil {
		app.Close()
		return nil, err
	}

	var records services.RecordClient = repositories.NewUserRepository(pool)
	if rdb := config.ConnectRedis(ctx, cfg, logger); rdb != nil {
		records = repositories.NewCachedUserRepository(repositories.NewUserRepository(pool), rdb, cfg.RecordCacheTTL, logger)
		app.close = append(app.close, func() { rdb.Close() })
	}

	assets, uploads, err := newAssetStore(cfg, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("asset store: %w", err)
	}

	screens := services.NewScreenRegistry(records, assets, logger, services.ScreenConfig{
		CommitPolicy:  cfg.FieldCommitPolicy,
		Timeout:       cfg.RemoteTimeout,
		PrunePrevious: cfg.PrunePreviousPhoto,
	})
	logger.Info("profile screens configured",
		zap.String("storage", cfg.StorageDriver),
		zap.String("field_commit_policy", string(cfg.FieldCommitPolicy)),
		zap.Bool("prune_previous_photo", cfg.PrunePreviousPhoto),
		zap.Duration("remote_timeout", cfg.RemoteTimeout),
	)

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, cfg, controllers.NewProfileController(screens, cfg.MaxUploadSize, logger), uploads)
	app.Router = router
	return app, nil
}

var (
	app     *App
	initErr error
	once    sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg, err := config.LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		logger, err := config.NewLogger(cfg)
		if err != nil {
			initErr = err
			return
		}
		app, initErr = NewApp(context.Background(), cfg, logger)
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, initErr.Error(), http.StatusInternalServerError)
		return
	}
	app.Router.ServeHTTP(w, r)
}
