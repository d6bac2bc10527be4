package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/dto"
	enrollment "github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/response"
)

type EnrollmentHandler struct {
	service enrollment.EnrollmentService
}

func NewEnrollmentHandler(service enrollment.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

func studentAndCourse(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	courseID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return studentID, courseID, true
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	studentID, courseID, ok := studentAndCourse(c)
	if !ok {
		return
	}

	res, err := h.service.Enroll(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "enrolled successfully", "enrollment": res})
}

func (h *EnrollmentHandler) CompleteLesson(c *gin.Context) {
	studentID, courseID, ok := studentAndCourse(c)
	if !ok {
		return
	}

	var req dto.CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lessonId"})
		return
	}

	res, err := h.service.CompleteLesson(c.Request.Context(), studentID, courseID, lessonID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "lesson marked as completed",
		"progress":    res.Progress,
		"completedAt": res.CompletedAt,
	})
}

func (h *EnrollmentHandler) GenerateCertificate(c *gin.Context) {
	studentID, courseID, ok := studentAndCourse(c)
	if !ok {
		return
	}

	res, err := h.service.GenerateCertificate(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	studentID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.MyCourses(c.Request.Context(), studentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(courses), "data": courses})
}

func (h *EnrollmentHandler) CourseDetails(c *gin.Context) {
	studentID, courseID, ok := studentAndCourse(c)
	if !ok {
		return
	}

	res, err := h.service.CourseDetails(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *EnrollmentHandler) EnrolledStudents(c *gin.Context) {
	courseID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	students, err := h.service.EnrolledStudents(c.Request.Context(), courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}
