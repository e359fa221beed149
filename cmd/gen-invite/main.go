package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/examsentry/integrity-backend/internal/config"
	"github.com/examsentry/integrity-backend/internal/database"
	"github.com/examsentry/integrity-backend/internal/logger"
	"github.com/examsentry/integrity-backend/internal/model"
	"github.com/examsentry/integrity-backend/internal/repository"
)

// gen-invite mints an invite token for an exam and prints it once. Only the
// bcrypt hash of the secret is stored; the printed token cannot be recovered
// later.
func main() {
	var (
		examIDStr string
		maxUses   int
		ttlHours  int
	)
	flag.StringVar(&examIDStr, "exam", "", "Exam UUID the token admits to (required)")
	flag.IntVar(&maxUses, "max-uses", 0, "Maximum admissions (0 = unlimited)")
	flag.IntVar(&ttlHours, "ttl-hours", 0, "Hours until expiry (0 = never)")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	examID, err := uuid.Parse(examIDStr)
	if err != nil {
		log.Fatal().Msg("A valid -exam UUID is required")
	}

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	inviteRepo := repository.NewInviteRepository(pool)

	// ─── Mint Token ────────────────────────────────────────────────────
	prefix, err := randomToken(6)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate token prefix")
	}
	secret, err := randomToken(24)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate token secret")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash token secret")
	}

	invite := &model.InviteToken{
		CodePrefix: prefix,
		SecretHash: hash,
		MaxUses:    maxUses,
	}
	if ttlHours > 0 {
		expiry := time.Now().Add(time.Duration(ttlHours) * time.Hour)
		invite.ExpiresAt = &expiry
	}

	if err := inviteRepo.Create(ctx, examID, invite); err != nil {
		log.Fatal().Err(err).Msg("Failed to store invite token")
	}

	fmt.Printf("Invite token for exam %s (id %d):\n\n    %s.%s\n\n", examID, invite.ID, prefix, secret)
	fmt.Println("Store it now — the secret is not recoverable from the database.")
}

// randomToken returns n bytes of randomness as unpadded URL-safe base64.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
