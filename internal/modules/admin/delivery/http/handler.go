package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/admin/dto"
	admin "github.com/prajaktamali15/e-learning-platform/internal/modules/admin/service"
	course "github.com/prajaktamali15/e-learning-platform/internal/modules/course/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/response"
)

type AdminHandler struct {
	adminService  admin.AdminService
	courseService course.CourseService
}

func NewAdminHandler(adminService admin.AdminService, courseService course.CourseService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		courseService: courseService,
	}
}

func (h *AdminHandler) GetAllCourses(c *gin.Context) {
	var query dto.CourseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.courseService.ListAll(c.Request.Context(), query.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AdminHandler) GetCourse(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.courseService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) ApproveCourse(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.courseService.Approve(c.Request.Context(), adminID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course approved", "course": res})
}

func (h *AdminHandler) RejectCourse(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.courseService.Reject(c.Request.Context(), adminID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course rejected", "course": res})
}

func (h *AdminHandler) DeleteCourse(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.courseService.AdminDelete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "course deleted successfully"})
}

func (h *AdminHandler) Search(c *gin.Context) {
	var query dto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.adminService.Search(c.Request.Context(), query.Q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
