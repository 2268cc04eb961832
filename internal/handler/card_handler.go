package handler

import (
	"io"
	"net/http"

	"github.com/betonpro/tradelinkpro/internal/ocr"
	"github.com/betonpro/tradelinkpro/pkg/response"
	"github.com/gin-gonic/gin"
)

type CardHandler struct {
	client *ocr.Client
}

func NewCardHandler(client *ocr.Client) *CardHandler {
	return &CardHandler{client: client}
}

// AnalyzeCard extracts a contact name and phone number from an
// uploaded business card image. The caller blocks for the duration of
// the analysis poll; on any failure it can fall back to manual entry,
// so an error here never blocks supplier creation.
func (h *CardHandler) AnalyzeCard(c *gin.Context) {
	fh, err := c.FormFile("card_image")
	if err != nil || fh.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune image reçue"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.client.Analyze(c.Request.Context(), image, fh.Header.Get("Content-Type"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
