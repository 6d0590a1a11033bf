package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	fundgatehttp "fundgate/internal/http"
	"fundgate/internal/jwttoken"
	"fundgate/internal/loan"
	loanhandler "fundgate/internal/loan/handler"
	"fundgate/internal/notification"
	"fundgate/internal/platform/config"
	"fundgate/internal/platform/httpserver"
	"fundgate/internal/platform/logger"
	"fundgate/internal/platform/metrics"
	"fundgate/internal/platform/middleware"
	redisplatform "fundgate/internal/platform/redis"
	"fundgate/internal/scheduler"
	"fundgate/internal/treasury"
	treasuryhandler "fundgate/internal/treasury/handler"
)

// Repeat notices of one kind for one loan are suppressed for this long, so
// sweeping hourly still notifies at most daily.
const notificationThrottleTTL = 20 * time.Hour

// tokenValidator bridges the jwt service to the auth middleware's claims type.
type tokenValidator struct {
	tokens *jwttoken.Service
}

func (v tokenValidator) ValidateToken(raw string) (*middleware.JWTClaims, error) {
	claims, err := v.tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{BorrowerID: claims.BorrowerID}, nil
}

// main wires stores, services, the scheduler, and the HTTP server, then waits
// for a shutdown signal. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loanStore loan.Store = loan.NewInMemoryStore()
	var treasuryStore treasury.Store = treasury.NewInMemoryStore()
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}

		treasuryPG := treasury.NewPostgres(db)
		loanPG := loan.NewPostgres(db)
		if err := treasuryPG.Migrate(ctx); err != nil {
			log.Error("migrate treasury tables", "error", err)
			os.Exit(1)
		}
		if err := loanPG.Migrate(ctx); err != nil {
			log.Error("migrate loan tables", "error", err)
			os.Exit(1)
		}
		treasuryStore = treasuryPG
		loanStore = loanPG
		log.Info("using postgres persistence")
	} else {
		log.Info("using in-memory persistence")
	}

	treasuries := treasury.NewService(treasuryStore, log)
	if err := treasuries.Bootstrap(ctx); err != nil {
		log.Error("bootstrap treasuries", "error", err)
		os.Exit(1)
	}
	loans := loan.NewService(loanStore, treasuries, m, log)

	var sink notification.Notifier = notification.NewLogNotifier(log)
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := notification.NewKafkaNotifier(ctx, cfg.KafkaBrokers, cfg.NotificationTopic, log)
		if err != nil {
			log.Error("connect kafka notifier", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("using kafka notification sink", "topic", cfg.NotificationTopic)
	}

	var marker notification.Marker = notification.NewMemoryMarker()
	redisClient, err := redisplatform.New(ctx, config.RedisFromEnv())
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		marker = notification.NewRedisMarker(redisClient.Client)
		log.Info("using redis notification throttle")
	}
	notifier := notification.NewThrottled(sink, marker, notificationThrottleTTL, log)

	sched := scheduler.New(loans, treasuries, notifier, m, log, scheduler.Config{
		SweepInterval: cfg.SweepInterval,
		AutoRebalance: cfg.AutoRebalance,
	})
	go sched.Run(ctx)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "fundgate", "fundgate")
	router := fundgatehttp.NewRouter(fundgatehttp.Deps{
		Loans:          loanhandler.New(loans, log),
		Treasuries:     treasuryhandler.New(treasuries, loans, log),
		Sweeper:        sched,
		Validator:      tokenValidator{tokens: tokens},
		AdminTokenHash: cfg.AdminTokenHash,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)
	go func() {
		log.Info("starting fundgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	cancel()
	if err := httpserver.Shutdown(srv, 10*time.Second); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
