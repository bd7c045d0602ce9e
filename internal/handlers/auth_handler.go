package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/auth"
	"github.com/technova/storefront-api/utils"
)

type AuthHandler struct {
	Auth auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{Auth: svc}
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Name, a valid email and a password of at least 8 characters are required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.Auth.Register(ctx, input)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Account created successfully", session))
}

func (h *AuthHandler) LoginUser(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Email and password are required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	session, err := h.Auth.Login(ctx, input)
	if err != nil {
		respondError(c, err, "Failed to sign in")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Signed in successfully", session))
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Refresh token is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	tokens, err := h.Auth.Refresh(ctx, input.RefreshToken)
	if err != nil {
		respondError(c, err, "Failed to refresh session")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Token refreshed", gin.H{"tokens": tokens}))
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Auth.Me(ctx, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Profile fetched successfully", gin.H{"user": user}))
}

func (h *AuthHandler) UpdateCurrency(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input struct {
		Currency string `json:"currency" binding:"required,len=3"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("A 3-letter currency code is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.Auth.SetPreferredCurrency(ctx, userID, input.Currency)
	if err != nil {
		respondError(c, err, "Failed to update currency")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Preferred currency updated", gin.H{"user": user}))
}
