package handlers

import (
	"errors"
	"net/http"
	"time"

	"todoapp/internal/auth"
	"todoapp/internal/dto"
	"todoapp/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session_id"

// AuthHandler handles signup, login, logout and token issuance.
type AuthHandler struct {
	sessions   auth.Sessions
	tokens     *auth.TokenManager
	userSvc    *service.UserService
	sessionTTL time.Duration
}

// NewAuthHandler returns a new AuthHandler. sessionTTL drives the cookie
// lifetime and must match the TTL the session store was built with.
func NewAuthHandler(sessions auth.Sessions, tokens *auth.TokenManager, userSvc *service.UserService, sessionTTL time.Duration) *AuthHandler {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthHandler{sessions: sessions, tokens: tokens, userSvc: userSvc, sessionTTL: sessionTTL}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionID string) {
	c.SetCookie(sessionCookieName, sessionID, int(h.sessionTTL.Seconds()), "/", "", false, true) // httpOnly
}

// Signup godoc
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Credentials with confirmation"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	h.setSessionCookie(c, sessionID)
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username}})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	h.setSessionCookie(c, sessionID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": dto.UserResponse{ID: user.ID, Username: user.Username}})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(sessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// Token godoc
// @Summary      Issue a bearer token for the token surface
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.TokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token, ExpiresIn: int64(h.tokens.TTL().Seconds())})
}
