package handler

import (
	"net/http"

	"github.com/mrinmay27/the149-store/internal/dto"
	"github.com/mrinmay27/the149-store/internal/middleware"
	"github.com/mrinmay27/the149-store/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Register creates a new staff profile. The profile stays unusable until an
// admin approves it; admins are notified through the worker queue.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login exchanges phone + PIN for an access/refresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh issues a fresh token pair from a valid refresh token. Approval is
// re-checked so a revoked profile cannot keep rotating tokens forever.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me returns the profile embedded in the caller's token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	c.JSON(http.StatusOK, dto.ProfileResponse{
		ID:       claims.UserID,
		Phone:    claims.Phone,
		Name:     claims.Name,
		Role:     claims.Role,
		IsAdmin:  claims.IsAdmin,
		Approved: claims.Approved,
	})
}
