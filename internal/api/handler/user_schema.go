package handler

import (
	"time"

	"github.com/99minutos/task-api/internal/core/domain"
)

type createUserRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required"`
	Password string   `json:"password" validate:"required,nopassword"`
	Age      *float64 `json:"age,omitempty" validate:"omitempty,gte=0"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the public view of a user. Password hash, session tokens
// and avatar bytes never leave the service.
type userResponse struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *float64  `json:"age,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type createdUserData struct {
	Name string `json:"name"`
	ID   string `json:"_id"`
}

type createUserResponse struct {
	Message string          `json:"message"`
	Data    createdUserData `json:"data"`
}

type authData struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type registerResponse struct {
	Message string   `json:"message"`
	Data    authData `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type updateResponse struct {
	IsUpdated bool   `json:"isUpdated"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

type searchResponse struct {
	SearchResult bool   `json:"searchResult"`
	Message      string `json:"message,omitempty"`
	Data         any    `json:"data,omitempty"`
}
