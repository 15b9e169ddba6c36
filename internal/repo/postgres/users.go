package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/speakwise/speakwise/internal/domain/user"
	"github.com/speakwise/speakwise/internal/observability"
)

const userColumns = `id, username, email, password_hash, profile_picture, exam_records, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new user. The unique indexes on username and email are
// the real guard against duplicates; any pre-check by the caller is only a
// fast path, so a 23505 here still maps to user.ErrExists.
func (r *UsersRepo) Create(ctx context.Context, email, username, passwordHash string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		ExamRecords:  map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.ProfilePicture, u.ExamRecords, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrExists
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getByQuery(ctx, "users.get_by_id",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getByQuery(ctx, "users.get_by_username",
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// GetByUsernameOrEmail matches either unique field; login and the signup
// pre-check both go through here.
func (r *UsersRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (user.User, error) {
	return r.getByQuery(ctx, "users.get_by_username_or_email",
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2`, username, email)
}

// Update overwrites only the supplied fields; empty strings keep the
// stored value. A rename onto a taken username or email trips the unique
// index and surfaces as user.ErrExists.
func (r *UsersRepo) Update(ctx context.Context, id string, changes user.Changes) (user.User, error) {
	var u user.User

	err := r.observe("users.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE users SET
				username      = COALESCE(NULLIF($2,''), username),
				email         = COALESCE(NULLIF($3,''), email),
				password_hash = COALESCE(NULLIF($4,''), password_hash),
				updated_at    = $5
			 WHERE id = $1
			 RETURNING `+userColumns,
			id, changes.Username, changes.Email, changes.PasswordHash, time.Now().UTC(),
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.ProfilePicture,
			&u.ExamRecords,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrExists
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) getByQuery(ctx context.Context, op, query string, args ...any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, query, args...).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.ProfilePicture,
			&u.ExamRecords,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}
