package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/service/auth"
)

// CredentialService checks and registers operator credentials.
type CredentialService interface {
	CheckCredentials(ctx context.Context, username, password string) (bool, error)
	AddUser(ctx context.Context, username, password string) (bool, error)
}

// UsernameKey is the gin context key holding the authenticated username.
const UsernameKey = "username"

// AuthHandler serves registration and guards the API with HTTP Basic auth.
type AuthHandler struct {
	svc    CredentialService
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP adapter.
func NewAuthHandler(svc CredentialService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and a password of at least 6 characters are required"})
		return
	}

	added, err := h.svc.AddUser(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	case !added:
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

// RequireBasicAuth rejects requests without valid Basic credentials.
func (h *AuthHandler) RequireBasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="smartstore"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		valid, err := h.svc.CheckCredentials(c.Request.Context(), username, password)
		if err != nil {
			h.logger.Error("credential check failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "credential check failed"})
			return
		}
		if !valid {
			h.logger.Warn("invalid credentials", zap.String("username", username))
			c.Header("WWW-Authenticate", `Basic realm="smartstore"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}
