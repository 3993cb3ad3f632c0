package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

type stubUserService struct {
	createFn        func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	registerFn      func(ctx context.Context, in ports.CreateUserInput) (*ports.AuthResult, error)
	loginFn         func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	authenticateFn  func(ctx context.Context, token string) (*domain.User, error)
	logoutFn        func(ctx context.Context, userID, token string) error
	logoutAllFn     func(ctx context.Context, userID string) error
	updateProfileFn func(ctx context.Context, userID string, patch map[string]any) (*domain.User, error)
	deleteFn        func(ctx context.Context, user *domain.User) error
	getByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	setAvatarFn     func(ctx context.Context, userID string, upload ports.AvatarUpload) error
	removeAvatarFn  func(ctx context.Context, userID string) error
	getAvatarFn     func(ctx context.Context, id string) ([]byte, error)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Register(ctx context.Context, in ports.CreateUserInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubUserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return s.authenticateFn(ctx, token)
}

func (s *stubUserService) Logout(ctx context.Context, userID, token string) error {
	return s.logoutFn(ctx, userID, token)
}

func (s *stubUserService) LogoutAll(ctx context.Context, userID string) error {
	return s.logoutAllFn(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID string, patch map[string]any) (*domain.User, error) {
	return s.updateProfileFn(ctx, userID, patch)
}

func (s *stubUserService) Delete(ctx context.Context, user *domain.User) error {
	return s.deleteFn(ctx, user)
}

func (s *stubUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubUserService) SetAvatar(ctx context.Context, userID string, upload ports.AvatarUpload) error {
	return s.setAvatarFn(ctx, userID, upload)
}

func (s *stubUserService) RemoveAvatar(ctx context.Context, userID string) error {
	return s.removeAvatarFn(ctx, userID)
}

func (s *stubUserService) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	return s.getAvatarFn(ctx, id)
}

type stubTaskService struct {
	createFn func(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error)
	updateFn func(ctx context.Context, owner, id string, patch map[string]any) (*domain.Task, error)
	deleteFn func(ctx context.Context, owner, id string) (*domain.Task, error)
	listFn   func(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error)
	getFn    func(ctx context.Context, owner, id string) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, in)
}

func (s *stubTaskService) Update(ctx context.Context, owner, id string, patch map[string]any) (*domain.Task, error) {
	return s.updateFn(ctx, owner, id, patch)
}

func (s *stubTaskService) Delete(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.deleteFn(ctx, owner, id)
}

func (s *stubTaskService) List(ctx context.Context, in ports.ListTasksInput) ([]*domain.Task, error) {
	return s.listFn(ctx, in)
}

func (s *stubTaskService) Get(ctx context.Context, owner, id string) (*domain.Task, error) {
	return s.getFn(ctx, owner, id)
}

const (
	testUserID = "64b7f0c2a1b2c3d4e5f60718"
	testTaskID = "64b7f0c2a1b2c3d4e5f60799"
	testToken  = "token-abc"
)

var testTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func testUser() *domain.User {
	age := 30.0
	return &domain.User{
		ID:           testUserID,
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$08$hash",
		Age:          &age,
		Tokens:       []string{testToken},
		Avatar:       []byte("png"),
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
}

func testTask() *domain.Task {
	return &domain.Task{
		ID:          testTaskID,
		Description: "write tests",
		Completed:   false,
		Owner:       testUserID,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

var nopLogger = zerolog.Nop()

// newJSONContext builds a request context with a JSON body. When authed is
// true the user and token are bound the way the Auth middleware does it.
func newJSONContext(method, target, body string, authed bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if authed {
		c.Set("user", testUser())
		c.Set("token", testToken)
	}
	return c, rec
}
