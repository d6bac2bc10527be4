package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/progress/dto"
	progress "github.com/prajaktamali15/e-learning-platform/internal/modules/progress/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/response"
)

type ProgressHandler struct {
	service progress.ProgressService
}

func NewProgressHandler(service progress.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

func (h *ProgressHandler) Upsert(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	courseID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpsertProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Upsert(c.Request.Context(), studentID, courseID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProgressHandler) MyProgress(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetStudentProgress(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	courseID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetCourseProgress(c.Request.Context(), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
