package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tourbot/internal/adapters/admin"
	"tourbot/internal/adapters/hotels"
	"tourbot/internal/adapters/observability"
	redisad "tourbot/internal/adapters/redis"
	"tourbot/internal/adapters/telegram"
	"tourbot/internal/app"
	"tourbot/internal/shared"
	mysqlrepo "tourbot/internal/storage/mysql"
)

func main() {
	_ = godotenv.Load()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	history := mysqlrepo.New(db)
	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.SessionTTL)

	provider, err := hotels.New(cfg.HotelsBase, cfg.HotelsKey, cfg.HotelsRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize hotels client")
	}
	tg, err := telegram.NewClient(cfg.TelegramBase, cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram client")
	}
	channel := telegram.NewChannel(tg)
	calendar := telegram.NewCalendar(tg)

	orch := app.NewOrchestrator(provider, channel, history)
	dispatcher := app.NewDispatcher(channel, calendar, provider, sessions, history, orch)
	poller := telegram.NewPoller(tg, dispatcher, cfg.MaxSessions)

	ctx := context.Background()
	if err := poller.RegisterCommands(ctx); err != nil {
		log.Warn().Err(err).Msg("setMyCommands failed")
	}

	// admin http
	srv := admin.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&admin.Handlers{History: history})

	go func() {
		log.Info().Str("addr", cfg.AdminAddr).Msg("admin listening")
		httpSrv := &http.Server{Addr: cfg.AdminAddr, Handler: srv.Mux()}
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("admin server failed")
		}
	}()

	log.Info().Msg("bot polling")
	if err := poller.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("poller stopped")
	}
}
