package service

import (
	"context"
	"testing"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/user/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.TODO()

	t.Run("Successful registration defaults to customer role", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := svc.Register(ctx, domain.RegisterRequest{Email: "  User@Example.COM ", Password: "password123"})

		assert.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email) // dinormalisasi
		assert.Equal(t, []string{string(auth.RoleCustomer)}, user.Roles)
		assert.Empty(t, user.PasswordHash)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Duplicate email maps to already exists", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrUserConflict).Once()

		user, err := svc.Register(ctx, domain.RegisterRequest{Email: "user@example.com", Password: "password123"})

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.TODO()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	storedUser := func() *domain.User {
		return &domain.User{
			ID:           "user123",
			Email:        "user@example.com",
			PasswordHash: string(hashed),
			Roles:        []string{string(auth.RoleCustomer)},
		}
	}

	t.Run("Valid credentials return token", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "user@example.com").Return(storedUser(), nil).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "password123"})

		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "user123", resp.User.ID)
		assert.Empty(t, resp.User.PasswordHash)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "user@example.com").Return(storedUser(), nil).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "user@example.com", Password: "wrongpass"})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		svc := NewUserService(mockRepo)

		mockRepo.On("GetUserByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrUserNotFound).Once()

		resp, err := svc.Login(ctx, domain.LoginRequest{Email: "ghost@example.com", Password: "password123"})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
