package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
)

type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Register: failed to hash password", err)
		return nil, fmt.Errorf("could not process registration: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		// Registrasi publik selalu menjadi customer; role manager
		// ditetapkan lewat kanal admin di luar core.
		Roles: []string{string(auth.RoleCustomer)},
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrUserConflict) {
			return nil, ErrUserAlreadyExists
		}
		logger.Error("Register: failed to create user in repo", err)
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return user, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		logger.Error("Login: failed to get user by email", err)
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password))
	if err != nil { // Password tidak cocok
		return nil, ErrInvalidCredentials
	}

	roles := make([]auth.Role, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = auth.Role(r)
	}
	tokenString, err := auth.GenerateToken(user.ID, user.Email, roles)
	if err != nil {
		logger.Error("Login: failed to sign token", err)
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return &domain.LoginResponse{User: *user, Token: tokenString}, nil
}
