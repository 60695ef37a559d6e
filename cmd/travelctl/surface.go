package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/urfave/cli/v2"

	"CapeTravel/internal/client"
	"CapeTravel/internal/core/identity"
	"CapeTravel/internal/logging"
)

// surface is one terminal session: a controller over the HTTP API with its
// anonymous id persisted in the local state directory
type surface struct {
	api        *client.HTTPClient
	provider   *identity.Provider
	controller *client.Controller
	db         *badger.DB
	token      string
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".capetravel"
	}
	return filepath.Join(home, ".capetravel")
}

func openSurface(c *cli.Context) (*surface, error) {
	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console"})
	logger := logging.Component("travelctl")

	db, err := identity.OpenBadger(c.String("state-dir"))
	if err != nil {
		return nil, err
	}

	api := client.NewHTTPClient(c.String("server"), nil)
	provider := identity.NewProvider(identity.NewBadgerSlot(db, ""), api, logger)
	token := c.String("token")

	return &surface{
		api:        api,
		provider:   provider,
		controller: client.NewController(api, provider, func() string { return token }, 0, logger),
		db:         db,
		token:      token,
	}, nil
}

func (s *surface) Close() {
	if err := s.db.Close(); err != nil {
		logging.Warn().Err(err).Msg("failed to close state store")
	}
}

// withSurface runs fn against an open surface and closes it afterwards
func withSurface(fn func(c *cli.Context, s *surface) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSurface(c)
		if err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		defer s.Close()
		return fn(c, s)
	}
}
