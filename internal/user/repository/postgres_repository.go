package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/domain"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserConflict = errors.New("user with this email already exists")

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (email, password_hash, roles, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`

	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, pq.Array(user.Roles), user.CreatedAt, user.UpdatedAt).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		// Kode error '23505' adalah unique_violation
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.Error("CreateUser: unique violation", err)
			return ErrUserConflict
		}
		logger.Error("CreateUser: failed to insert user", err)
		return err
	}
	return nil
}

func (r *postgresUserRepository) getUserBy(ctx context.Context, field, value string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, roles, created_at, updated_at FROM users WHERE ` + field + ` = $1`
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID, &user.Email, &user.PasswordHash, pq.Array(&user.Roles), &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.Error("GetUserBy"+field+": query failed", err)
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUserBy(ctx, "email", email)
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUserBy(ctx, "id", id)
}
