package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
	uploadDir   string
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig, uploadDir string) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, uploadDir: uploadDir}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName    formData  string  true   "Full name"
// @Param        email       formData  string  true   "Email"
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  Envelope{data=domain.User}
// @Failure      400  {object}  ErrorEnvelope
// @Failure      409  {object}  ErrorEnvelope
// @Failure      500  {object}  ErrorEnvelope
// @Router       /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	avatarPath, err := stageFile(c, string(domain.ImageAvatar), h.uploadDir)
	if err != nil {
		return err
	}
	defer discard(avatarPath)

	coverPath, err := stageFile(c, string(domain.ImageCoverImage), h.uploadDir)
	if err != nil {
		return err
	}
	defer discard(coverPath)

	user, err := h.authService.Register(c.Request().Context(), toRegisterInput(req, avatarPath, coverPath))
	observeAuth("register", err)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login authenticates by username or email and sets the session cookies.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope{data=loginResponse}
// @Failure      400   {object}  ErrorEnvelope
// @Failure      401   {object}  ErrorEnvelope
// @Failure      404   {object}  ErrorEnvelope
// @Router       /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	observeAuth("login", err)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, res.Tokens)
	return respond(c, http.StatusOK, loginResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}, "User logged in successfully")
}

// Logout revokes the refresh token and clears the session cookies.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope
// @Failure      401  {object}  ErrorEnvelope
// @Router       /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.authService.Logout(c.Request().Context(), user.ID)
	observeAuth("logout", err)
	if err != nil {
		return err
	}

	h.cookies.clearSession(c)
	return respond(c, http.StatusOK, emptyData{}, "User logged out successfully")
}

// Refresh rotates the refresh token presented in the cookie or the body.
//
// @Summary      Refresh access token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  false  "Refresh token when no cookie is sent"
// @Success      200   {object}  Envelope{data=ports.TokenPair}
// @Failure      401   {object}  ErrorEnvelope
// @Router       /users/refreshToken [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if ck, err := c.Cookie(refreshCookie); err == nil {
		token = ck.Value
	}
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(c.Request().Context(), token)
	observeAuth("refresh", err)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, pair)
	return respond(c, http.StatusOK, pair, "Access token refreshed")
}
