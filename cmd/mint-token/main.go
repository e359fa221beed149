package main

import (
	"flag"
	"fmt"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/logger"
	"github.com/examsentry/integrity-backend/internal/service"
)

// mint-token issues a client or proctor JWT for manual testing and for
// provisioning the proctor dashboard. Requires TOKEN_SECRET to be set.
func main() {
	var (
		tokenType string
		subjectID int
	)
	flag.StringVar(&tokenType, "type", "client", "Token type: client or proctor")
	flag.IntVar(&subjectID, "subject", 0, "Subject id embedded in the token (student or proctor id)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	var tt service.TokenType
	switch tokenType {
	case "client":
		tt = service.TokenTypeClient
	case "proctor":
		tt = service.TokenTypeProctor
	default:
		log.Fatal().Str("type", tokenType).Msg("Token type must be client or proctor")
	}

	tokenService := service.NewTokenService(cfg)
	if !tokenService.Enabled() {
		log.Fatal().Msg("TOKEN_SECRET is not configured")
	}

	token, err := tokenService.Mint(tt, subjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to mint token")
	}

	fmt.Println(token)
}
