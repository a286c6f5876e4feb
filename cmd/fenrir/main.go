// Command fenrir runs the matching server: one registry of order books
// behind a TCP front end, with every event fanned out through a hub.
package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"fenrir/config"
	"fenrir/internal/events"
	"fenrir/internal/net"
	"fenrir/internal/registry"
)

var errInvalidPair = errors.New("market must be formatted BASE_QUOTE")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	marketsFlag := flag.String("markets", "BTC_USD,ETH_USD", "comma-separated list of base_quote pairs to open at startup")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reg := registry.New()
	hub := events.NewHub()

	for _, pair := range strings.Split(*marketsFlag, ",") {
		tp, err := parsePair(pair)
		if err != nil {
			log.Fatal().Err(err).Str("pair", pair).Msg("invalid market")
		}
		if err := reg.AddMarket(tp, hub.ForMarket(tp)); err != nil {
			log.Fatal().Err(err).Str("pair", pair).Msg("failed to open market")
		}
		log.Info().Str("pair", tp.String()).Msg("market open")
	}

	srv := net.New(cfg.Address, cfg.Port, reg, cfg.Workers)

	go srv.Run(ctx)
	<-ctx.Done()
}

func parsePair(s string) (registry.TradingPair, error) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return registry.TradingPair{}, errInvalidPair
	}
	return registry.NewTradingPair(parts[0], parts[1]), nil
}
