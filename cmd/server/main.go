package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luwak-cafe/pos-api/internal/config"
	"github.com/luwak-cafe/pos-api/internal/ledger"
	"github.com/luwak-cafe/pos-api/internal/router"
	"github.com/luwak-cafe/pos-api/internal/store/memory"
	"github.com/luwak-cafe/pos-api/internal/store/postgres"
	"github.com/luwak-cafe/pos-api/internal/ws"
)

func main() {
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("WARNING: unknown timezone %q, falling back to UTC-5", cfg.Timezone)
		loc = time.FixedZone("-05", -5*3600)
	}

	ctx := context.Background()

	var (
		store ledger.Store
		users router.UserStore
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("connecting to postgres: %v", err)
		}
		defer pg.Close()
		store, users = pg, pg
		log.Println("Using postgres store")
	} else {
		mem, err := memory.New(cfg.SnapshotPath)
		if err != nil {
			log.Fatalf("opening memory store: %v", err)
		}
		store, users = mem, mem
		if cfg.SnapshotPath != "" {
			log.Printf("Using memory store with snapshot at %s", cfg.SnapshotPath)
		} else {
			log.Println("Using memory store (no snapshot, state is lost on restart)")
		}
	}

	l := ledger.New(store, ledger.NewStaticCodeVerifier(cfg.AdminCode), loc)

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, l, users, hub)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
}
