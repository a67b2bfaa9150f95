package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"codeshare/internal/api"
	"codeshare/internal/config"
	"codeshare/internal/routers"
	"codeshare/internal/session"
	"codeshare/internal/utils"
)

var (
	listenAndServe = http.ListenAndServe
	exitFunc       = func(err error) { log.Fatal(err) }
)

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}

func run(ctx context.Context) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := utils.NewLogger()

	store := session.NewStore(cfg.DefaultLanguage)
	registry := session.NewRegistry(store)
	broadcaster := session.NewBroadcaster(store, logger)
	sweeper := session.NewSweeper(store, registry, logger, cfg.SweepInterval, cfg.EmptyGrace, cfg.MaxSessionAge)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sweeper.Run(ctx)

	h := api.NewHandlers(logger, store, registry, broadcaster, sweeper)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Mount("/", routers.New(h))

	addr := ":" + cfg.Port
	log.Printf("codeshare listening on %s", addr)
	return listenAndServe(addr, r)
}
