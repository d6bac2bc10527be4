package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/dto"
	attachment "github.com/prajaktamali15/e-learning-platform/internal/modules/attachment/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/response"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// UploadAttachment stores a lesson file ahead of lesson creation. The kind is
// taken from the form or inferred from the extension.
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	kind := c.PostForm("kind")
	if kind == "" {
		inferred, ok := attachment.KindForExt(file.Filename)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF and MP4 files are allowed"})
			return
		}
		kind = inferred
	}

	att, err := h.service.UploadLessonFile(c.Request.Context(), userID, kind, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUploadAttachmentResponse(att))
}
