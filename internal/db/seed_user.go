package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/speakwise/speakwise/internal/config"
	"github.com/speakwise/speakwise/internal/security"
)

// EnsureSeedUser creates a bootstrap account when SEED_* env vars are set,
// so a fresh deployment has something to log in with. No-op when the
// account already exists.
func EnsureSeedUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedEmail == "" || cfg.SeedUsername == "" || cfg.SeedPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1 OR username = $2`,
		cfg.SeedEmail, cfg.SeedUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, profile_picture, exam_records, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		uuid.NewString(), cfg.SeedUsername, cfg.SeedEmail, hash, "", map[string]any{}, now, now,
	)

	return err
}
