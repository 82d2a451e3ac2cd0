package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/config"
	"github.com/LordMilo/SmartTaskManager/internal/handler"
	"github.com/LordMilo/SmartTaskManager/internal/integration"
	"github.com/LordMilo/SmartTaskManager/internal/logger"
	"github.com/LordMilo/SmartTaskManager/internal/remote"
	"github.com/LordMilo/SmartTaskManager/internal/service"
	"github.com/LordMilo/SmartTaskManager/internal/session"
	"github.com/LordMilo/SmartTaskManager/internal/speech"
	"github.com/LordMilo/SmartTaskManager/internal/state"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

//go:embed dist/*
var staticFS embed.FS

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logger.Init(cfg.Log)
	loc := cfg.Location()

	store := state.New(state.Options{
		Remote:   openRemote(cfg),
		Location: loc,
		Logger:   logger.Component("state"),
	})
	if err := store.Initialize(context.Background()); err != nil {
		logger.Warn("server.offline_start", "err", err)
	}

	google := service.NewGoogleService(cfg.Google.DriveUploadURL, cfg.Google.SheetsURL, logger.Component("google"))
	authSvc := service.NewAuthService(store, cfg.Auth.AdminPhone)
	taskSvc := service.NewTaskService(store, google)
	rosterSvc := service.NewRosterService(store)
	attachSvc := service.NewAttachmentService(store, google, cfg.Media.Dir, int64(cfg.Media.MaxSizeMB)<<20)

	catalog := integration.Unavailable[*service.CatalogSync]()
	if cfg.MOI.APIKey != "" {
		raw, err := cfg.NewRawClient()
		if err != nil {
			slog.Warn("sdk client init failed", "err", err)
		} else {
			catalog = integration.Available(service.NewCatalogSync(raw, cfg.MOI.DatabaseID, cfg.MOI.TasksTable, func() string {
				return time.Now().In(loc).Format("20060102_150405")
			}))
			slog.Info("catalog sync enabled")
		}
	}

	speaker := integration.Unavailable[*speech.Speaker]()
	if path, err := exec.LookPath(cfg.Speech.Command); err == nil {
		speaker = integration.Available(speech.NewSpeaker(speech.Command{Path: path}, cfg.Speech.Preferred, logger.Component("speech")))
	} else {
		logger.Warn("speech.unavailable", "command", cfg.Speech.Command)
	}

	secret := []byte(cfg.Auth.JWTSecret)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-New-Token", "Content-Disposition"},
		AllowCredentials: true,
	}))

	sessions := openSessions(cfg)
	handler.Register(r, handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, sessions, store, google, secret),
		Tasks:        handler.NewTaskHandler(store, taskSvc, attachSvc, speaker),
		Roster:       handler.NewRosterHandler(store, rosterSvc, taskSvc),
		Integrations: handler.NewIntegrationHandler(store, google, catalog),
	}, secret, sessions)
	r.Static("/media", cfg.Media.Dir)

	distFS, _ := fs.Sub(staticFS, "dist")
	r.NoRoute(gin.WrapH(http.FileServer(http.FS(distFS))))

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "offline", store.Offline())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		slog.Warn("server shutdown", "err", err)
	}
	if sp, ok := speaker.Get(); ok {
		sp.Stop()
	}
	google.Wait()
	if err := store.Teardown(shutdown); err != nil {
		slog.Warn("state teardown", "err", err)
	}
	slog.Info("server stopped")
}

// openRemote picks the mirror backend. Any failure here leaves the board
// starting offline rather than aborting.
func openRemote(cfg *config.Config) remote.Client {
	switch cfg.Remote.Backend {
	case "rest":
		if cfg.Remote.URL == "" {
			logger.Warn("remote.not_configured", "backend", "rest")
			return remote.Unreachable{}
		}
		return remote.NewREST(cfg.Remote.URL, cfg.Remote.Key)
	case "mysql":
		db, err := cfg.OpenGormDB()
		if err != nil {
			logger.Warn("remote.db_connect_failed", "err", err)
			return remote.Unreachable{}
		}
		sqlRemote := remote.NewSQL(db)
		if err := sqlRemote.Migrate(context.Background()); err != nil {
			logger.Warn("remote.migrate_failed", "err", err)
		}
		return sqlRemote
	default:
		logger.Info("remote.disabled", "backend", cfg.Remote.Backend)
		return remote.Unreachable{}
	}
}

func openSessions(cfg *config.Config) session.Store {
	if cfg.Session.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr, DB: cfg.Session.RedisDB})
		return session.NewRedis(client, cfg.SessionTTL())
	}
	if dir := filepath.Dir(cfg.Session.File); dir != "" {
		os.MkdirAll(dir, 0o755)
	}
	return session.NewFile(cfg.Session.File)
}
