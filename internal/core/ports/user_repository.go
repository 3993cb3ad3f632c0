package ports

import (
	"context"

	"github.com/99minutos/task-api/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDAndToken returns the user only while token is still in its session list.
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
	Update(ctx context.Context, id string, changes domain.UserChanges) (*domain.User, error)
	AddToken(ctx context.Context, id, token string) error
	RemoveToken(ctx context.Context, id, token string) error
	ClearTokens(ctx context.Context, id string) error
	// SetAvatar overwrites the avatar field. A nil avatar unsets it.
	SetAvatar(ctx context.Context, id string, avatar []byte) error
	Delete(ctx context.Context, id string) error
}
