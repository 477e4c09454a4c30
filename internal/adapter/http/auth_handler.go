package http

import (
	"net/http"

	"agrolend-backend/internal/domain/user"
	"agrolend-backend/internal/usecase/directory"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct{ dir *directory.Usecase }

func NewAuthHandler(dir *directory.Usecase) *AuthHandler { return &AuthHandler{dir: dir} }

type registerReq struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	Name              string `json:"name" validate:"required"`
	Role              string `json:"role" validate:"required,oneof=producer investor"`
	CollateralAccount string `json:"collateral_account" validate:"required"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	usr, err := h.dir.Register(c.Request().Context(), directory.RegisterInput{
		Email:             req.Email,
		Password:          req.Password,
		Name:              req.Name,
		Role:              user.Role(req.Role),
		CollateralAccount: req.CollateralAccount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, usr)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	token, usr, err := h.dir.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  usr,
	})
}
