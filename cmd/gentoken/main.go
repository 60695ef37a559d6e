package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"CapeTravel/internal/auth"
	"CapeTravel/internal/config"
)

// gentoken signs a session token for a user id with the configured secret,
// for exercising authenticated voting locally.
//
// Usage:
//
//	CT_AUTH_TOKEN_SECRET=... go run ./cmd/gentoken --user 42
func main() {
	app := &cli.App{
		Name:  "gentoken",
		Usage: "Sign a CapeTravel session token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User `ID` to place in the token subject",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "Token lifetime; defaults to auth.token_ttl",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ttl := cfg.Auth.TokenTTL
	if c.IsSet("ttl") {
		ttl = c.Duration("ttl")
	}

	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.Issuer, ttl)
	if err != nil {
		return err
	}

	token, err := tokens.Issue(c.String("user"))
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "expires %s\n", time.Now().Add(ttl).Format(time.RFC3339))
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
