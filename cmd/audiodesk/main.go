// Command audiodesk serves the transcripts workspace: the settings-gated
// /transcripts page, its JSON API and the background transcription worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/audiodesk/auth"
	"github.com/kbukum/audiodesk/authz"
	"github.com/kbukum/audiodesk/bootstrap"
	"github.com/kbukum/audiodesk/config"
	"github.com/kbukum/audiodesk/database"
	"github.com/kbukum/audiodesk/flash"
	"github.com/kbukum/audiodesk/logger"
	"github.com/kbukum/audiodesk/observability"
	"github.com/kbukum/audiodesk/redis"
	"github.com/kbukum/audiodesk/server"
	"github.com/kbukum/audiodesk/server/middleware"
	"github.com/kbukum/audiodesk/settings"
	"github.com/kbukum/audiodesk/storage"
	_ "github.com/kbukum/audiodesk/storage/local"
	_ "github.com/kbukum/audiodesk/storage/s3"
	"github.com/kbukum/audiodesk/transcription/speech"
	"github.com/kbukum/audiodesk/transcripts"
	"github.com/kbukum/audiodesk/web"
)

const serviceName = "audiodesk"

func main() {
	var cfg AppConfig
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create app: %v\n", err)
		os.Exit(1)
	}
	if err := setup(app); err != nil {
		app.Logger.Fatal("Setup failed", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := app.Run(context.Background()); err != nil {
		app.Logger.Fatal("Application failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

// infra holds the components started before the web tier is wired.
type infra struct {
	db      *database.Component
	redis   *redis.Component
	storage *storage.Component
}

func setup(app *bootstrap.App[*AppConfig]) error {
	cfg := app.Cfg
	log := app.Logger

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	models := append([]interface{}{&settings.Record{}}, transcripts.Models()...)
	in := &infra{
		db:      database.NewComponent(cfg.Database, log).WithAutoMigrate(models...),
		storage: storage.NewComponent(cfg.Storage, log),
	}
	if err := app.RegisterComponent(observability.NewComponent(cfg.Tracing, log)); err != nil {
		return err
	}
	if err := app.RegisterComponent(in.db); err != nil {
		return err
	}
	if cfg.Redis.Enabled {
		in.redis = redis.NewComponent(cfg.Redis, log)
		if err := app.RegisterComponent(in.redis); err != nil {
			return err
		}
	}
	if err := app.RegisterComponent(in.storage); err != nil {
		return err
	}

	srv := server.New(cfg.Server, log)
	app.OnConfigure(func(ctx context.Context, app *bootstrap.App[*AppConfig]) error {
		return wire(ctx, app, in, srv)
	})
	return nil
}

// wire builds the web tier and the worker on the started infrastructure,
// then starts them.
func wire(ctx context.Context, app *bootstrap.App[*AppConfig], in *infra, srv *server.Server) error {
	cfg := app.Cfg
	log := app.Logger

	metrics, err := observability.NewGlobalMetrics()
	if err != nil {
		return err
	}

	var client *redis.Client
	if in.redis != nil {
		client = in.redis.Client()
	}

	store, err := settings.Open(ctx, cfg.Settings, in.db.DB().GormDB, client, log)
	if err != nil {
		return err
	}
	enc, err := cfg.Settings.Encryptor()
	if err != nil {
		return err
	}
	flashes, err := flash.New(cfg.Flash, client, enc, cfg.Server.SecureCookies)
	if err != nil {
		return err
	}
	resolver, _, err := auth.NewJWTResolver(cfg.Auth)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	renderer, err := web.NewTemplateRenderer(log)
	if err != nil {
		return err
	}

	blobs := in.storage.Storage()
	if blobs == nil {
		return fmt.Errorf("storage is not available")
	}

	var queue transcripts.Queue
	switch cfg.Worker.Queue {
	case transcripts.QueueRedis:
		queue = transcripts.NewRedisQueue(client, cfg.Worker.PollTimeout)
	default:
		queue = transcripts.NewMemoryQueue(cfg.Worker.QueueCapacity)
	}

	repo := transcripts.NewGormRepository(in.db.DB())
	svc := transcripts.NewService(transcripts.ServiceConfig{
		MaxFileSize: cfg.Storage.MaxUploadBytes(),
	}, repo, blobs, queue, metrics, log)
	identity, err := speech.NewManagedIdentity(cfg.Worker.Identity)
	if err != nil {
		return fmt.Errorf("worker identity: %w", err)
	}
	worker := transcripts.NewWorker(cfg.Worker, repo, blobs, queue, store,
		transcripts.SpeechProviderFactory(cfg.Worker.SpeechTimeout, identity.Token), metrics, log)

	srv.ApplyMiddleware(metrics, renderer.ErrorPage)
	engine := srv.Engine()
	engine.Use(middleware.Session(resolver, log))

	if err := web.RegisterStatic(engine); err != nil {
		return err
	}
	srv.RegisterHealth(cfg.Name, app.Components.HealthAll)

	engine.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, transcripts.PagePath)
	})
	chats := web.NewChatsPage(renderer, flashes, log)
	engine.GET(transcripts.ChatsPath, authz.Chain(authz.RequireLogin(cfg.Auth.LoginPath)), server.Handle(chats.Serve))

	transcripts.RegisterRoutes(engine, transcripts.Routes{
		Page:            transcripts.NewPageHandler(store, flashes, renderer, metrics, log),
		API:             transcripts.NewAPI(svc),
		Settings:        store,
		Checker:         authz.NewMapChecker(authz.DefaultRolePermissions()),
		LoginPath:       cfg.Auth.LoginPath,
		UploadRateLimit: cfg.Server.UploadRateLimit,
	})

	if err := app.RegisterComponent(worker); err != nil {
		return err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	log.Info("Transcripts workspace wired", logger.Fields(
		"settings", cfg.Settings.Backend,
		"flash", cfg.Flash.Backend,
		"storage", cfg.Storage.Provider,
		"queue", cfg.Worker.Queue,
		"worker_enabled", cfg.Worker.Enabled,
	))
	return app.Components.StartAll(ctx)
}
