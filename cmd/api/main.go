package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/clock"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/config"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/database"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/logger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/metrics"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/auth"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/billing"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/catalog"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/ledger"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/scheduler"
	"github.com/Tharindurajasinghe/vision-shop-pos-backend/internal/modules/summary"
	"github.com/bsm/redislock"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// stores are the repositories one process works against.
type stores struct {
	catalog catalog.Repository
	bills   billing.Repository
	ledger  ledger.Repository
	summary summary.Repository
	tx      billing.TxManager
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := logger.New(cfg.LogLevel)

	cal, err := clock.NewCalendar(cfg.Timezone)
	if err != nil {
		log.Fatal(err)
	}
	clk := clock.SystemClock{}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// ── Storage ─────────────────────────────────────────────
	var st stores
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		products := catalog.NewMemoryRepository()
		if cfg.SeedFile == "" {
			log.Warn("CATALOG_SEED_FILE not set, catalog is empty")
		} else {
			n, err := products.LoadSeed(cfg.SeedFile)
			if err != nil {
				log.WithError(err).Fatal("load catalog seed")
			}
			log.WithFields(logrus.Fields{"file": cfg.SeedFile, "products": n}).Info("catalog seeded")
		}
		st = memoryStores(products)
	} else {
		db, err := database.Open(sigCtx, cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("connect postgres")
		}
		defer db.Close()
		if err := database.Migrate(sigCtx, db); err != nil {
			log.WithError(err).Fatal("migrate")
		}
		log.Info("connected to postgres")
		st = postgresStores(db)
	}

	var locker scheduler.Locker
	if cfg.RedisAddress != "" {
		rdb, err := database.ConnectRedis(sigCtx, cfg.RedisAddress)
		if err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		defer rdb.Close()
		locker = redislock.New(rdb)
		log.Info("connected to redis, scheduled jobs use distributed locks")
	}

	// ── Services ────────────────────────────────────────────
	authService, err := auth.NewService(cfg.LoginUsername, cfg.LoginPassword, []byte(cfg.JWTSecret), cfg.JWTExpiresIn, clk)
	if err != nil {
		log.Fatal(err)
	}
	catalogService := catalog.NewService(st.catalog)
	billingService := billing.NewService(st.tx, st.bills, cal, clk, log)
	summaryService := summary.NewService(st.summary, st.bills, st.ledger, cal, clk, log)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	if cfg.Prometheus {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("OK"))
		})
		auth.NewHandler(authService).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(authService))
			catalog.NewHandler(catalogService).RegisterRoutes(r)
			billing.NewHandler(billingService).RegisterRoutes(r)
			summary.NewHandler(summaryService, cal, clk).RegisterRoutes(r)
		})
	})

	// ── Scheduled jobs ──────────────────────────────────────
	jobs := scheduler.New(summaryService, cal, clk, locker, log)
	if err := jobs.Start(cfg.DayCloseSpec, cfg.MonthlySpec); err != nil {
		log.Fatal(err)
	}

	// ── Start Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()
	log.WithFields(logrus.Fields{"port": cfg.AppPort, "timezone": cfg.Timezone}).Info("POS API server started")

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
		}
	case <-sigCtx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	select {
	case <-jobs.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("scheduled job still running at shutdown")
	}
}

func postgresStores(db *sql.DB) stores {
	return stores{
		catalog: catalog.NewPostgresRepository(db),
		bills:   billing.NewPostgresRepository(db),
		ledger:  ledger.NewPostgresRepository(db),
		summary: summary.NewPostgresRepository(db),
		tx:      billing.NewPostgresTxManager(db),
	}
}

func memoryStores(products *catalog.MemoryRepository) stores {
	bills := billing.NewMemoryRepository()
	days := ledger.NewMemoryRepository()
	return stores{
		catalog: products,
		bills:   bills,
		ledger:  days,
		summary: summary.NewMemoryRepository(),
		tx:      billing.NewMemoryTxManager(products, bills, days),
	}
}
