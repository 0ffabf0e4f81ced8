// Command token mints a bearer token for an API client using the server's
// auth settings.
//
//	token -client dashboard
package main

import (
	"flag"
	"fmt"
	"os"

	"news-search-api/internal/auth"
	"news-search-api/internal/config"
	"news-search-api/internal/logger"
)

func main() {
	clientID := flag.String("client", "", "client id to embed in the token")
	configPath := flag.String("config", "./config", "directory containing config.yaml")
	flag.Parse()

	l := logger.L()
	if *clientID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Auth.Secret == "" {
		l.Fatal().Msg("auth.secret (JWT_SECRET) is not set")
	}

	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	token, err := tokens.GenerateToken(*clientID)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to sign token")
	}
	fmt.Println(token)
}
