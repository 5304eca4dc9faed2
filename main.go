package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forrest-fire-fund/cnx-backend/internal/cache"
	"github.com/forrest-fire-fund/cnx-backend/internal/communityplans"
	"github.com/forrest-fire-fund/cnx-backend/internal/config"
	"github.com/forrest-fire-fund/cnx-backend/internal/db"
	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/forrest-fire-fund/cnx-backend/internal/logger"
	"github.com/forrest-fire-fund/cnx-backend/internal/metrics"
	"github.com/forrest-fire-fund/cnx-backend/internal/middleware"
	"github.com/forrest-fire-fund/cnx-backend/internal/support"
	"github.com/forrest-fire-fund/cnx-backend/internal/villages"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

type deps struct {
	Villages    *villages.Handler
	Plans       *communityplans.Handler
	Support     *support.Handler
	FrontendURL string
	Log         *zap.Logger
}

func newRouter(d deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.AccessMiddleware(d.Log))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORSMiddleware(d.FrontendURL))
	r.Use(chimiddleware.Compress(5))

	r.Get("/", RootHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Mount("/api/community-plans", communityplans.SetupRoutes(d.Plans))
	r.Mount("/api/support", support.SetupRoutes(d.Support))
	r.Mount("/api", villages.SetupRoutes(d.Villages))

	return r
}

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.LoadFromEnv()

	log, err := logger.Init(cfg.Log.Level, cfg.Log.Format, "fire-management-api")
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	overlays, err := gis.LoadManifest(cfg.OverlayManifest)
	if err != nil {
		log.Fatal("failed to read overlay manifest", zap.Error(err))
	}

	ds, err := gis.Loader{
		VillagesPath: cfg.VillagesPath(),
		PlansPath:    cfg.PlansPath(),
		OverlayDir:   cfg.OverlayDir,
		Overlays:     overlays,
		Log:          log,
	}.Load(ctx)
	if err != nil {
		log.Fatal("failed to load data files", zap.Error(err))
	}

	snapshot := villages.NewSnapshot(ds)
	metrics.VillagesLoaded.Set(float64(len(snapshot.Villages)))
	log.Info("processed villages with combined data", zap.Int("villages", len(snapshot.Villages)))

	gdb, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := communityplans.Init(gdb); err != nil {
		log.Fatal("failed to initialise community plans", zap.Error(err))
	}
	store := communityplans.NewGormStore(gdb)

	rc := cache.Open(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if rc != nil {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, building cache disabled", zap.Error(err))
			rc = nil
		}
	}
	buildings := gis.NewBuildings(cfg.BuildingsDir(), cache.NewRedis(rc, "buildings:", cfg.Redis.TTL))

	handler := newRouter(deps{
		Villages:    &villages.Handler{Snapshot: snapshot, Buildings: buildings, Store: store},
		Plans:       communityplans.NewHandler(store),
		Support:     support.NewHandler(),
		FrontendURL: cfg.FrontendURL,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
