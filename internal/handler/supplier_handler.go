package handler

import (
	"mime/multipart"
	"net/http"
	"os"

	"github.com/betonpro/tradelinkpro/internal/model"
	"github.com/betonpro/tradelinkpro/internal/repository"
	"github.com/betonpro/tradelinkpro/internal/service"
	"github.com/betonpro/tradelinkpro/pkg/apperror"
	"github.com/betonpro/tradelinkpro/pkg/response"
	"github.com/betonpro/tradelinkpro/pkg/storage"
	"github.com/betonpro/tradelinkpro/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SupplierHandler struct {
	supplierService service.SupplierService
	store           storage.FileStorage
}

func NewSupplierHandler(supplierService service.SupplierService, store storage.FileStorage) *SupplierHandler {
	return &SupplierHandler{
		supplierService: supplierService,
		store:           store,
	}
}

func (h *SupplierHandler) Index(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	query := repository.ListQuery{
		Search:     c.Query("search"),
		Sort:       c.Query("sort"),
		Ratings:    c.QueryArray("rating"),
		Categories: c.QueryArray("category"),
	}

	suppliers, err := h.supplierService.List(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suppliers": suppliers,
		"total":     len(suppliers),
		"username":  response.GetUsername(c),
		"is_admin":  response.IsAdmin(c),
		"search":    query.Search,
		"sort":      query.Sort,
	})
}

// AddForm returns the category list plus any scan-to-prefill values
// passed in the query string.
func (h *SupplierHandler) AddForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": model.Categories,
		"prefill": gin.H{
			"name":     c.Query("name"),
			"contact":  c.Query("contact"),
			"whatsapp": c.Query("whatsapp"),
			"wechat":   c.Query("wechat"),
		},
	})
}

func (h *SupplierHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input service.SupplierInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	photo, closePhoto, err := formUpload(c, "photo")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closePhoto()
	catalog, closeCatalog, err := formUpload(c, "catalog")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeCatalog()

	if _, err := h.supplierService.Create(c.Request.Context(), userID, input, photo, catalog); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *SupplierHandler) Detail(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := supplierID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	detail, err := h.supplierService.Detail(c.Request.Context(), id, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supplier":    detail.Supplier,
		"whatsapp_qr": detail.WhatsappQR,
		"wechat_qr":   detail.WechatQR,
	})
}

func (h *SupplierHandler) EditForm(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := supplierID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	supplier, err := h.supplierService.Get(c.Request.Context(), id, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"supplier":   supplier,
		"categories": model.Categories,
	})
}

func (h *SupplierHandler) Update(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := supplierID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var input service.SupplierInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	photo, closePhoto, err := formUpload(c, "photo")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closePhoto()
	catalog, closeCatalog, err := formUpload(c, "catalog")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer closeCatalog()

	if err := h.supplierService.Update(c.Request.Context(), id, userID, input, photo, catalog); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *SupplierHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := supplierID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// ServeUpload streams a stored file back to the client. Anyone holding
// the filename may fetch it; there is no auth check on this route.
func (h *SupplierHandler) ServeUpload(c *gin.Context) {
	path := h.store.Path(c.Param("filename"))
	if _, err := os.Stat(path); err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}
	c.File(path)
}

func (h *SupplierHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": model.Categories})
}

func supplierID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.ErrNotFound
	}
	return id, nil
}

// formUpload opens an optional multipart file field. A missing field
// yields a nil upload, matching the empty marker contract downstream.
func formUpload(c *gin.Context, field string) (*service.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	var f multipart.File
	f, err = fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &service.Upload{Filename: fh.Filename, Reader: f}, func() { f.Close() }, nil
}
