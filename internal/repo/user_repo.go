package repo

import (
	"context"

	dom "todoapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Create(ctx context.Context, username, passwordHash string) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, username, password_hash, created_at`

func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	var u dom.User
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}

// Create inserts a new user; created_at is assigned by the database.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING ` + userColumns
	var u dom.User
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}
