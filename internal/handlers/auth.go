package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/kmoroz/storefront/internal/middleware/auth"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/service"
)

type AuthHandler struct {
	Svc   *service.AuthService
	Users service.UserStore
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest,
			"name, email and password are required; password must be at least 6 characters")
	}

	res, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		}
		return err
	}

	c.SetCookie(TokenCookie(res.Token, res.TokenExp))

	return c.JSON(http.StatusCreated, echo.Map{
		"user":  res.User,
		"token": res.Token,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return err
	}

	c.SetCookie(TokenCookie(res.Token, res.TokenExp))

	return c.JSON(http.StatusOK, echo.Map{
		"user":  res.User,
		"token": res.Token,
	})
}

// Logout only clears the navigation cookie: tokens are stateless and die at
// their own expiry.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(DeleteTokenCookie())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := mwauth.UserID(c)
	if err != nil {
		return err
	}

	user, err := h.Users.FindUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}
