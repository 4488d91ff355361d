// Command nostr-rlyd runs the relay: load config, open the database pool,
// apply schema, build the relay identity, and serve until signaled to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nostr-rly/relay/internal/bus"
	"github.com/nostr-rly/relay/internal/config"
	"github.com/nostr-rly/relay/internal/group"
	"github.com/nostr-rly/relay/internal/nostr"
	"github.com/nostr-rly/relay/internal/relay"
	"github.com/nostr-rly/relay/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.IsDevelopment())

	log.Info().Str("name", cfg.RelayName).Str("addr", cfg.ListenAddr).Msg("starting relay")

	pool, err := store.OpenPool(cfg.DatabaseURL, cfg.PoolMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database pool")
	}
	defer pool.Close()

	eventStore := store.NewEventStore(pool, store.Config{
		DefaultQueryLimit:  cfg.DefaultQueryLimit,
		MaxQueryLimit:      cfg.MaxQueryLimit,
		DefaultSearchLimit: cfg.DefaultSearchLimit,
	})
	if err := eventStore.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	groupStore := group.NewPostgresStore(pool)

	identity, err := nostr.NewIdentity(cfg.RelaySecretKey, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build relay identity")
	}

	broadcastBus := bus.New(cfg.BroadcastBufferSize)

	handler := &relay.Handler{
		Store:     eventStore,
		Groups:    groupStore,
		Bus:       broadcastBus,
		Log:       log.Logger,
		Validator: relay.MusicKindValidator,
	}

	info := relay.RelayInfo{
		Name:          cfg.RelayName,
		Description:   cfg.RelayDescription,
		PubKey:        identity.PubKey,
		Software:      "https://github.com/nostr-rly/relay",
		Version:       "0.1.0",
		SupportedNIPs: []int{1, 29, 50},
	}

	srv := relay.NewServer(cfg.ListenAddr, handler, broadcastBus, info, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("relay server failed")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	broadcastBus.Close()
}

func setupLogging(development bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if development {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
