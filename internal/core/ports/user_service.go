package ports

import (
	"context"

	"github.com/99minutos/task-api/internal/core/domain"
)

// CreateUserInput is the DTO for both direct creation and signup.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Age      *float64
}

// AuthResult pairs a user with a freshly issued session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AvatarUpload is an uploaded avatar file before normalisation.
type AvatarUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// UserService defines account use cases.
type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	Register(ctx context.Context, in CreateUserInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	SetAvatar(ctx context.Context, userID string, upload AvatarUpload) error
	RemoveAvatar(ctx context.Context, userID string) error
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}
