package handler

import (
	"net/http"

	"github.com/betonpro/tradelinkpro/internal/middleware"
	"github.com/betonpro/tradelinkpro/internal/service"
	"github.com/betonpro/tradelinkpro/pkg/response"
	"github.com/betonpro/tradelinkpro/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginForm tells the client whether self-registration is open, which
// is only the case on a fresh install with zero users.
func (h *AuthHandler) LoginForm(c *gin.Context) {
	open, err := h.authService.RegistrationOpen(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allow_register": open})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input service.LoginInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	session, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	maxAge := int(h.authService.SessionTTL().Seconds())
	c.SetCookie(middleware.SessionCookie, session.Token, maxAge, "/", "", false, true)

	c.Redirect(http.StatusFound, middleware.SafeNext(c.Query("next")))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}

// RegisterForm is reachable without a session so the very first
// account can be created; afterwards only the admin may see it.
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	open, err := h.authService.RegistrationOpen(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !open && !response.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "La création de compte est réservée à l'administrateur."})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), input, response.IsAdmin(c)); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/login")
}
