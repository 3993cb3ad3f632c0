package ports

import "github.com/99minutos/task-api/internal/core/domain"

// Notifier delivers account lifecycle emails. Calls return immediately;
// delivery outcome is never reported to the caller.
type Notifier interface {
	Welcome(user *domain.User)
	Farewell(user *domain.User)
}

// AvatarProcessor normalises an uploaded image to the stored avatar format.
type AvatarProcessor interface {
	Process(data []byte) ([]byte, error)
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	// Verify checks signature and expiry and returns the user id claim.
	Verify(token string) (string, error)
}
