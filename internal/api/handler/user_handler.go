package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/task-api/internal/core/domain"
	"github.com/99minutos/task-api/internal/core/ports"
)

const (
	msgUserCreated     = "User created!"
	msgUserRegistered  = "User registered!"
	msgUserExists      = "User already exists. Try to log in instead."
	msgInvalidUpdates  = "Invalid updates!"
	msgSearchInvalidID = "Search failed: Invalid id."
	msgNoUserFound     = "Search completed: No user was found."
	msgAvatarUploaded  = "Avatar has been upload successfully!"
	msgAvatarRemoved   = "Avatar has been removed."
	errCreateUser      = "Unable to create a new user."
	errRegisterUser    = "Unable to register a new user."
	errLogin           = "Unable to login."
	errEmailInUse      = "Email is already in use."
	errInvalidBody     = "Invalid request body."
	errAvatarMissing   = "Please upload an image."
	defaultAvatarLimit = 1_000_000
)

type UserHandler struct {
	users          ports.UserService
	avatarMaxBytes int64
	log            zerolog.Logger
}

// NewUserHandler builds the user routes handler. avatarMaxBytes caps how much
// of an uploaded file is read into memory.
func NewUserHandler(users ports.UserService, avatarMaxBytes int64, log zerolog.Logger) *UserHandler {
	if avatarMaxBytes <= 0 {
		avatarMaxBytes = defaultAvatarLimit
	}
	return &UserHandler{users: users, avatarMaxBytes: avatarMaxBytes, log: log}
}

func (r createUserRequest) toInput() ports.CreateUserInput {
	return ports.CreateUserInput{Name: r.Name, Email: r.Email, Password: r.Password, Age: r.Age}
}

// Create inserts a user directly, without issuing a session.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateUser})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateUser})
	}

	user, err := h.users.Create(c.Request().Context(), req.toInput())
	if err != nil {
		h.log.Debug().Err(err).Msg("create user rejected")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errCreateUser})
	}

	return c.JSON(http.StatusCreated, createUserResponse{
		Message: msgUserCreated,
		Data:    createdUserData{Name: user.Name, ID: user.ID},
	})
}

// Register creates an account and opens its first session.
//
// @Summary      Sign up
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  registerResponse
// @Success      200   {object}  messageResponse  "email already registered"
// @Failure      400   {object}  errorResponse
// @Router       /users/signup [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errRegisterUser})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errRegisterUser})
	}

	res, err := h.users.Register(c.Request().Context(), req.toInput())
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return c.JSON(http.StatusOK, messageResponse{Message: msgUserExists})
		}
		h.log.Debug().Err(err).Msg("signup rejected")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errRegisterUser})
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: msgUserRegistered,
		Data:    authData{User: toUserResponse(res.User), Token: res.Token},
	})
}

// Login exchanges credentials for a new session token.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authData
// @Failure      400   {object}  errorResponse
// @Router       /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errLogin})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errLogin})
	}

	res, err := h.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errLogin})
	}

	return c.JSON(http.StatusOK, authData{User: toUserResponse(res.User), Token: res.Token})
}

// Logout revokes the token used for this request.
//
// @Summary      Logout
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Logout(c.Request().Context(), user.ID, ctxToken(c)); err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

// LogoutAll revokes every session of the caller.
//
// @Summary      Logout from all sessions
// @Tags         users
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500
// @Router       /users/logoutAll [post]
func (h *UserHandler) LogoutAll(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.users.LogoutAll(c.Request().Context(), user.ID); err != nil {
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.NoContent(http.StatusOK)
}

// UpdateProfile patches the caller's own profile. The :id path segment is
// accepted for compatibility but never used.
//
// @Summary      Update profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Ignored; the caller is updated"
// @Param        body  body      map[string]any  true  "Any of name, email, password, age"
// @Success      200   {object}  updateResponse
// @Failure      400   {object}  updateResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/{id} [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	patch, err := bindPatch(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidBody})
	}

	updated, err := h.users.UpdateProfile(c.Request().Context(), user.ID, patch)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrInvalidUpdates):
			return c.JSON(http.StatusBadRequest, updateResponse{IsUpdated: false, Message: msgInvalidUpdates})
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
		case errors.Is(err, domain.ErrUserExists):
			return c.JSON(http.StatusBadRequest, errorResponse{Error: errEmailInUse})
		}
		return err
	}

	return c.JSON(http.StatusOK, updateResponse{IsUpdated: true, Data: toUserResponse(updated)})
}

// Me returns the caller's public profile.
//
// @Summary      Current user
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteMe removes the caller together with every task they own.
//
// @Summary      Delete account
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      500
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Request().Context(), user); err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("delete user failed")
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// GetByID looks up any user's public profile.
//
// @Summary      Public profile
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  searchResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			return c.JSON(http.StatusOK, searchResponse{SearchResult: false, Message: msgSearchInvalidID})
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusOK, searchResponse{SearchResult: false, Message: msgNoUserFound})
		}
		return err
	}
	return c.JSON(http.StatusOK, searchResponse{SearchResult: true, Data: toUserResponse(user)})
}

// UploadAvatar stores the caller's avatar from the multipart field "avatar".
//
// @Summary      Upload avatar
// @Tags         users
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar  formData  file  true  "JPEG or PNG image"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      500
// @Router       /users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errAvatarMissing})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errAvatarMissing})
	}
	defer src.Close()

	// one byte past the limit is enough for the service to reject the upload
	data, err := io.ReadAll(io.LimitReader(src, h.avatarMaxBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: errAvatarMissing})
	}

	upload := ports.AvatarUpload{Filename: file.Filename, Size: file.Size, Data: data}
	if err := h.users.SetAvatar(c.Request().Context(), user.ID, upload); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
		}
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("store avatar failed")
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, messageResponse{Message: msgAvatarUploaded})
}

// RemoveAvatar deletes the caller's avatar.
//
// @Summary      Remove avatar
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /users/me/avatar [delete]
func (h *UserHandler) RemoveAvatar(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.users.RemoveAvatar(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: msgAvatarRemoved})
}

// GetAvatar serves a user's avatar as PNG.
//
// @Summary      Get avatar
// @Tags         users
// @Produce      png
// @Param        id   path  string  true  "User id"
// @Success      200  {file}  binary
// @Failure      404
// @Router       /users/{id}/avatar [get]
func (h *UserHandler) GetAvatar(c echo.Context) error {
	png, err := h.users.GetAvatar(c.Request().Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, domain.ErrAvatarNotFound) {
			h.log.Error().Err(err).Msg("get avatar failed")
		}
		return c.NoContent(http.StatusNotFound)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

// bindPatch decodes the JSON body into a generic map. Path parameters are
// deliberately kept out of it, unlike c.Bind.
func bindPatch(c echo.Context) (map[string]any, error) {
	patch := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}
