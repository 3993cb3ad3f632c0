package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/task-api/internal/pkg/metrics"
	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

const (
	defaultAvatarMaxBytes = 1_000_000
	bcryptCost            = 8
)

var avatarFilePattern = regexp.MustCompile(`^.*\.(jpg|jpeg|png)$`)

// profileFields is the allow-list for UpdateProfile.
var profileFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

// UserServiceConfig holds the tunables of UserService.
type UserServiceConfig struct {
	AvatarMaxBytes int64
}

// UserService implements account registration, authentication and profile management.
type UserService struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	tokens   ports.TokenIssuer
	avatars  ports.AvatarProcessor
	notifier ports.Notifier
	cfg      UserServiceConfig
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	tokens ports.TokenIssuer,
	avatars ports.AvatarProcessor,
	notifier ports.Notifier,
	cfg UserServiceConfig,
	log zerolog.Logger,
) *UserService {
	if cfg.AvatarMaxBytes <= 0 {
		cfg.AvatarMaxBytes = defaultAvatarMaxBytes
	}
	return &UserService{
		users:    users,
		tasks:    tasks,
		tokens:   tokens,
		avatars:  avatars,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

// Create inserts a user without issuing a session and without a duplicate pre-check.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user created")
	return created, nil
}

// Register creates the account, issues its first session token and queues the
// welcome email. An already registered email yields domain.ErrUserExists and no side effects.
func (s *UserService) Register(ctx context.Context, in ports.CreateUserInput) (*ports.AuthResult, error) {
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrUserExists
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	user, err := s.newUser(in)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.issueSession(ctx, created)
	if err != nil {
		return nil, err
	}

	s.notifier.Welcome(created)
	metrics.UsersRegisteredTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login verifies credentials and appends a new session. Unknown email and a
// wrong password are reported identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeLookupEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &ports.AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its user. The token must verify and
// still be present in the user's session list; every failure is ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByIDAndToken(ctx, userID, token)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrInvalidID) {
			s.log.Warn().Err(err).Msg("session lookup failed")
		}
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.users.RemoveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.users.ClearTokens(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}
	return nil
}

// UpdateProfile applies patch to the caller's profile. Keys outside the
// allow-list reject the whole patch before any value is looked at.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.User, error) {
	for key := range patch {
		if _, ok := profileFields[key]; !ok {
			return nil, domain.ErrInvalidUpdates
		}
	}

	var changes domain.UserChanges
	for key, raw := range patch {
		switch key {
		case "name":
			v, ok := raw.(string)
			if !ok {
				return nil, domain.NewValidationError("Name must be a string.")
			}
			name, err := domain.NormalizeName(v)
			if err != nil {
				return nil, err
			}
			changes.Name = &name
		case "email":
			v, ok := raw.(string)
			if !ok {
				return nil, domain.NewValidationError("Email is invalid.")
			}
			email, err := domain.NormalizeEmail(v)
			if err != nil {
				return nil, err
			}
			changes.Email = &email
		case "password":
			v, ok := raw.(string)
			if !ok {
				return nil, domain.NewValidationError("Password must be a string.")
			}
			password, err := domain.ValidatePassword(v)
			if err != nil {
				return nil, err
			}
			hash, err := hashPassword(password)
			if err != nil {
				return nil, err
			}
			changes.PasswordHash = &hash
		case "age":
			if raw == nil {
				changes.ClearAge = true
				continue
			}
			v, ok := raw.(float64)
			if !ok {
				return nil, domain.NewValidationError("Age must be a number.")
			}
			if err := domain.ValidateAge(v); err != nil {
				return nil, err
			}
			changes.Age = &v
		}
	}

	if changes.Empty() {
		return s.users.FindByID(ctx, userID)
	}
	return s.users.Update(ctx, userID, changes)
}

// Delete removes the user's tasks and then the user. The two writes are not
// atomic: a failure after the first leaves the account without its tasks.
func (s *UserService) Delete(ctx context.Context, user *domain.User) error {
	removed, err := s.tasks.DeleteByOwner(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("delete user tasks: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.notifier.Farewell(user)
	s.log.Info().Str("user_id", user.ID).Int64("tasks_removed", removed).Msg("user deleted")
	return nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// SetAvatar validates the upload, normalises it and overwrites the stored avatar.
func (s *UserService) SetAvatar(ctx context.Context, userID string, upload ports.AvatarUpload) error {
	if upload.Size > s.cfg.AvatarMaxBytes || int64(len(upload.Data)) > s.cfg.AvatarMaxBytes {
		metrics.AvatarUploadsTotal.WithLabelValues("too_large").Inc()
		return domain.NewValidationError("File too large")
	}
	if !avatarFilePattern.MatchString(upload.Filename) {
		metrics.AvatarUploadsTotal.WithLabelValues("bad_format").Inc()
		return domain.NewValidationError("Allowed image formats: .jpg, .jpeg, .png")
	}

	png, err := s.avatars.Process(upload.Data)
	if err != nil {
		metrics.AvatarUploadsTotal.WithLabelValues("bad_image").Inc()
		return domain.NewValidationError("Unable to process the image.")
	}

	if err := s.users.SetAvatar(ctx, userID, png); err != nil {
		return fmt.Errorf("store avatar: %w", err)
	}
	metrics.AvatarUploadsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *UserService) RemoveAvatar(ctx context.Context, userID string) error {
	if err := s.users.SetAvatar(ctx, userID, nil); err != nil {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}

// GetAvatar returns the stored PNG, or domain.ErrAvatarNotFound when the user
// is missing, the id is malformed, or no avatar was uploaded.
func (s *UserService) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, domain.ErrAvatarNotFound
		}
		return nil, err
	}
	if len(user.Avatar) == 0 {
		return nil, domain.ErrAvatarNotFound
	}
	return user.Avatar, nil
}

func (s *UserService) newUser(in ports.CreateUserInput) (*domain.User, error) {
	name, err := domain.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	password, err := domain.ValidatePassword(in.Password)
	if err != nil {
		return nil, err
	}
	if in.Age != nil {
		if err := domain.ValidateAge(*in.Age); err != nil {
			return nil, err
		}
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Age:          in.Age,
		Tokens:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (s *UserService) issueSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", err
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// normalizeLookupEmail mirrors the lowercasing applied on write so lookups match.
func normalizeLookupEmail(email string) string {
	if normalized, err := domain.NormalizeEmail(email); err == nil {
		return normalized
	}
	return email
}
