package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	course "github.com/prajaktamali15/e-learning-platform/internal/modules/course/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/response"
)

type CourseHandler struct {
	service course.CourseService
}

func NewCourseHandler(service course.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// userAndParam reads the caller id and a UUID path parameter, writing the
// error response itself when either is missing.
func userAndParam(c *gin.Context, param string) (uuid.UUID, uuid.UUID, bool) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err := response.ParamUUID(c, param)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	file, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return file, err
}

// bindLesson accepts either a JSON body or a multipart form carrying
// videoFile and attachmentFile.
func bindLesson(c *gin.Context) (dto.LessonInput, course.LessonFiles, bool) {
	var input dto.LessonInput
	var files course.LessonFiles

	if c.ContentType() != "multipart/form-data" {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.BindError(c, err)
			return input, files, false
		}
		return input, files, true
	}

	var form dto.LessonForm
	if err := c.ShouldBind(&form); err != nil {
		response.BindError(c, err)
		return input, files, false
	}
	input = form.Input()

	var err error
	if files.Video, err = optionalFile(c, "videoFile"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid videoFile"})
		return input, files, false
	}
	if files.Attachment, err = optionalFile(c, "attachmentFile"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachmentFile"})
		return input, files, false
	}
	return input, files, true
}

func (h *CourseHandler) ListPublic(c *gin.Context) {
	var viewer *uuid.UUID
	if id, err := response.GetUserID(c); err == nil {
		viewer = &id
	}

	courses, err := h.service.ListPublished(c.Request.Context(), viewer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) ListForStudent(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.ListPublished(c.Request.Context(), &userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CourseHandler) PublicSearch(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	courses, err := h.service.PublicSearch(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), userID, courseID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *CourseHandler) UpdateStatus(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateStatusByInstructor(c.Request.Context(), userID, courseID, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CourseHandler) RequestPublish(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	res, err := h.service.RequestPublish(c.Request.Context(), userID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course submitted for review", "course": res})
}

func (h *CourseHandler) CancelPublishRequest(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	res, err := h.service.CancelPublishRequest(c.Request.Context(), userID, courseID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "publish request cancelled", "course": res})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, courseID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted successfully"})
}

func (h *CourseHandler) AddPrerequisite(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.AddPrerequisite(c.Request.Context(), userID, courseID, req.PrerequisiteName)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CourseHandler) AddLesson(c *gin.Context) {
	userID, courseID, ok := userAndParam(c, "id")
	if !ok {
		return
	}

	input, files, ok := bindLesson(c)
	if !ok {
		return
	}

	lesson, err := h.service.AddLesson(c.Request.Context(), userID, courseID, input, files)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	userID, lessonID, ok := userAndParam(c, "lessonId")
	if !ok {
		return
	}

	input, files, ok := bindLesson(c)
	if !ok {
		return
	}

	lesson, err := h.service.UpdateLesson(c.Request.Context(), userID, lessonID, input, files)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	userID, lessonID, ok := userAndParam(c, "lessonId")
	if !ok {
		return
	}

	if err := h.service.DeleteLesson(c.Request.Context(), userID, lessonID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "lesson deleted successfully"})
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.ListByInstructor(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) MyPendingCourses(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.ListPendingByInstructor(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}

func (h *CourseHandler) SearchOwn(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	courses, err := h.service.SearchOwn(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, courses)
}
