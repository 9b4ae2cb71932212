package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salesops/giftware-scraper/internal/api"
	"github.com/salesops/giftware-scraper/internal/auth"
	"github.com/salesops/giftware-scraper/internal/browser"
	"github.com/salesops/giftware-scraper/internal/config"
	"github.com/salesops/giftware-scraper/internal/database"
	"github.com/salesops/giftware-scraper/internal/extractor"
	"github.com/salesops/giftware-scraper/internal/input"
	"github.com/salesops/giftware-scraper/internal/output"
	"github.com/salesops/giftware-scraper/internal/ratelimit"
	"github.com/salesops/giftware-scraper/internal/resolver"
	"github.com/salesops/giftware-scraper/internal/scraper"
	"github.com/salesops/giftware-scraper/internal/session"
	"github.com/salesops/giftware-scraper/pkg/logger"
)

func main() {
	var (
		inputPath  = flag.String("input", "", "item number list (.xlsx, .csv or .txt)")
		outputPath = flag.String("output", "results.csv", "report destination (.csv or .xlsx)")
		headless   = flag.Bool("headless", true, "run the browser headless")
		sessions   = flag.Int("sessions", 0, "number of parallel sessions (overrides SCRAPER_SESSIONS)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scraper -input items.xlsx [-output results.csv]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	items, err := input.ReadItemNumbers(*inputPath)
	if err != nil {
		log.Error("failed to read input", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	log.Info("input loaded", "path", *inputPath, "items", len(items))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Info("shutdown requested")
		cancel()
	}()

	b, err := browser.New(&browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		UserAgent:      cfg.Browser.UserAgent,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		log.Error("failed to start browser", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn("failed to close browser", "error", err)
		}
	}()

	var urlCache resolver.Cache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, running without URL cache", "error", err)
		} else {
			urlCache = resolver.NewRedisCache(client, cfg.Redis.CacheTTL, log)
			defer client.Close()
		}
	}

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			Database:    cfg.Database.Name,
			MaxConns:    int32(cfg.Database.MaxConns),
			MinConns:    1,
			MaxConnLife: time.Hour,
			MaxConnIdle: 30 * time.Minute,
		})
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	authOpts := auth.DefaultOptions(cfg.Scraper.BaseURL)
	authOpts.FormTimeout = cfg.Scraper.FormTimeout
	authOpts.VerifyTimeout = cfg.Scraper.VerifyTimeout

	resolverOpts := resolver.DefaultOptions(cfg.Scraper.BaseURL)
	resolverOpts.LoadTimeout = cfg.Scraper.LoadTimeout

	pipeline := scraper.NewPipeline(
		resolver.New(resolverOpts, urlCache, log),
		extractor.New(log),
		log,
	)

	sessionFactory := func() (*session.Session, error) {
		page, err := b.NewSessionPage(cfg.Browser.Timeout)
		if err != nil {
			return nil, err
		}
		return session.New(page), nil
	}

	var archive scraper.Archive
	if db != nil {
		archive = db
	}

	orch := scraper.NewOrchestrator(
		sessionFactory,
		auth.New(authOpts, log),
		pipeline,
		ratelimit.NewAdaptiveLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		archive,
		scraper.OrchestratorOptions{MaxConsecutiveFaults: cfg.Scraper.MaxConsecutiveFaults},
		log,
	)

	if cfg.Server.Enabled {
		srv := api.NewServer(cfg.Server.Host, cfg.Server.Port, api.NewHandlers(orch, db, log), log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("api server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("api shutdown failed", "error", err)
			}
		}()
	}

	creds := auth.Credentials{
		Email:    cfg.Credentials.Email,
		Password: cfg.Credentials.Password,
	}

	n := cfg.Scraper.Sessions
	if *sessions > 0 {
		n = *sessions
	}

	records, err := orch.RunPartitioned(ctx, items, creds, n)
	if err != nil {
		log.Error("batch failed", "error", err)
		os.Exit(1)
	}

	if err := output.WriteRecords(*outputPath, records); err != nil {
		log.Error("failed to write report", "path", *outputPath, "error", err)
		os.Exit(1)
	}

	log.Info("report written", "path", *outputPath, "records", len(records))
}
