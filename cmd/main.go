package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saeidalz13/battleship-tcp/api"
	"github.com/saeidalz13/battleship-tcp/config"
	"github.com/saeidalz13/battleship-tcp/db"
)

const shutdownTimeout = time.Second * 10

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	opts := []api.Option{
		api.WithPort(cfg.Port),
		api.WithStage(cfg.Stage),
		api.WithTimeouts(api.Timeouts{
			Join:  cfg.JoinTimeout,
			Move:  cfg.MoveTimeout,
			Write: cfg.WriteTimeout,
		}),
	}
	if cfg.Host != "" {
		opts = append(opts, api.WithHost(cfg.Host))
	}
	if cfg.WsPort != 0 {
		opts = append(opts, api.WithWsPort(cfg.WsPort))
	}
	if cfg.DatabaseUrl != "" {
		psql := db.MustConnectToDb(cfg.DatabaseUrl, db.DefaultMigrationDir)
		defer psql.Close()
		opts = append(opts, api.WithDb(psql))
	} else {
		log.Println("DATABASE_URL not set, analytics disabled")
	}

	server := api.NewServer(opts...)
	if err := server.Listen(); err != nil {
		log.Fatalln(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx) }()

	select {
	case err := <-served:
		if err != nil {
			log.Println(err)
		}
	case <-ctx.Done():
		log.Println("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
