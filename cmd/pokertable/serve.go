package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/lox/pokertable/internal/randutil"
	"github.com/lox/pokertable/internal/server"
	"github.com/lox/pokertable/internal/store"
)

// ServeCmd runs the WebSocket table server.
type ServeCmd struct {
	Config string `kong:"default='pokertable.hcl',type='path',help='HCL config file; defaults apply when it does not exist'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed for every table (optional)'"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	level := g.LogLevel
	if level == "" {
		level = cfg.Server.LogLevel
	}
	logger, err := g.newLogger(level)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Server.DataDir, logger)
	if err != nil {
		return err
	}

	seed := randutil.Seed()
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		logger.Info("Using random seed", "seed", seed)
	}

	s, err := server.NewServer(cfg, logger, server.WithStore(st), server.WithSeed(seed))
	if err != nil {
		return err
	}

	logger.Info("Starting pokertable server",
		"address", cfg.ListenAddress(),
		"tables", len(cfg.Tables),
		"data_dir", st.Dir(),
		"config", c.Config,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
