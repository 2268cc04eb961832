package handler

import (
	"net/http"

	"github.com/betonpro/tradelinkpro/internal/service"
	"github.com/betonpro/tradelinkpro/pkg/apperror"
	"github.com/betonpro/tradelinkpro/pkg/response"
	"github.com/betonpro/tradelinkpro/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) EditUserForm(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.adminService.GetUser(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AdminHandler) ResetPassword(c *gin.Context) {
	id, err := userID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input service.ResetPasswordInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.adminService.ResetPassword(c.Request.Context(), id, input); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/admin/users")
}

func userID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.ErrNotFound
	}
	return id, nil
}
