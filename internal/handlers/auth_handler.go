package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront-service/internal/auth"
	"storefront-service/internal/models"
)

// AuthHandler handles admin sign-in and sign-out against the identity
// provider.
type AuthHandler struct {
	authenticator auth.Authenticator
	state         *auth.SessionState
}

func NewAuthHandler(authenticator auth.Authenticator, state *auth.SessionState) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, state: state}
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login signs an admin in
// @Summary Admin login
// @Description Verifies the credential and returns a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Email and password are required",
			},
		})
		return
	}

	session, err := h.authenticator.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "INVALID_CREDENTIALS",
					Message: "Failed to log in. Please check your credentials.",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LOGIN_FAILED",
				Message: "Failed to log in, please retry",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: session})
}

// Logout signs the admin out
// @Summary Admin logout
// @Description Clears the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authenticator.SignOut(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "LOGOUT_FAILED",
				Message: "Failed to sign out",
			},
		})
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// GetSession reports the current session
// @Summary Current session
// @Description Returns the current session, or signedIn=false when none
// @Tags Auth
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /auth/session [get]
func (h *AuthHandler) GetSession(c *gin.Context) {
	current := h.state.Current()
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data: gin.H{
			"signedIn": current != nil,
			"session":  current,
		},
	})
}
