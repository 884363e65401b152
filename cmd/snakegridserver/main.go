// Command snakegridserver boots one snakegrid room: a single World, a
// single Room, and the game loop and HTTP surface that serve it.
// Grounded on the teacher's main.go bootstrap (flat package-main wiring
// of World/ConnManager/GameLoop plus http.ListenAndServe), generalized
// to flag-driven config, structured logging, and signal-based graceful
// shutdown instead of a bare log.Fatal on ListenAndServe's return.
package main

import (
	"context"
	"flag"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snakegrid/internal/bus"
	"snakegrid/internal/config"
	"snakegrid/internal/engine"
	"snakegrid/internal/gameloop"
	"snakegrid/internal/httpapi"
	"snakegrid/internal/logging"
	"snakegrid/internal/room"
)

func main() {
	cfg := config.Default()

	addr := flag.String("addr", cfg.Addr, "listen address")
	jsonLogs := flag.Bool("json-logs", true, "emit structured logs as JSON instead of text")
	seed := flag.Int64("seed", time.Now().UnixNano(), "RNG seed for world initialization and fruit spawning")
	flag.Parse()
	cfg.Addr = *addr

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	logOpts := []logging.Option{logging.WithOutput(os.Stdout)}
	if *jsonLogs {
		logOpts = append(logOpts, logging.WithJSON())
	} else {
		logOpts = append(logOpts, logging.WithText())
	}
	log := logging.New(logOpts...)

	rng := rand.New(rand.NewSource(*seed))

	world := engine.New(cfg.Grid, rng, log.With(logging.String("component", "engine")))
	rm := room.New(cfg.Room)
	evBus := bus.New(cfg.Transport.BusQueueDepth)
	loop := gameloop.New(world, rm, evBus, cfg.Timing, log.With(logging.String("component", "gameloop")))

	mux := httpapi.NewMux(httpapi.Deps{
		Config: cfg,
		World:  world,
		Room:   rm,
		Bus:    evBus,
		Loop:   loop,
		Log:    log.With(logging.String("component", "httpapi")),
		Start:  time.Now(),
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go loop.Run(ctx)

	go func() {
		log.Info("server listening", logging.String("addr", cfg.Addr), logging.Int64("seed", *seed))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", logging.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", logging.Err(err))
	}
}
