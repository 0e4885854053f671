package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/vamosjogar/sports-meetup-api/internal/model"
	"github.com/vamosjogar/sports-meetup-api/internal/utils"
)

const userColumns = `id, nome, email, senha_hash, created_at, updated_at`

// UserRepo owns the 'usuarios' table.  Emails are normalized to lower case
// on every write and lookup so the unique index, not string comparison
// rules, decides what counts as a duplicate.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Create hashes the password and inserts the user, returning its ID.
// Duplicate emails surface as ErrEmailExists (MySQL error 1062 on the unique
// email index).
func (r *UserRepo) Create(ctx context.Context, nome, email, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (nome, email, senha_hash) VALUES (?, ?, ?)`,
		strings.TrimSpace(nome), normalizeEmail(email), hash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE email = ? LIMIT 1`,
		normalizeEmail(email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(ctx,
		`SELECT `+userColumns+` FROM usuarios WHERE id = ? LIMIT 1`, id)
}

func (r *UserRepo) scanOne(ctx context.Context, q string, arg any) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Nome, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
