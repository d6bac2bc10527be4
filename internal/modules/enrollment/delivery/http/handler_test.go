package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/dto"
	enrollment "github.com/prajaktamali15/e-learning-platform/internal/modules/enrollment/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

type stubService struct {
	enrollment.EnrollmentService

	gotLesson uuid.UUID
}

func (s *stubService) Enroll(_ context.Context, studentID, courseID uuid.UUID) (*dto.EnrollmentResponse, error) {
	return &dto.EnrollmentResponse{ID: uuid.New(), StudentID: studentID, CourseID: courseID}, nil
}

func (s *stubService) CompleteLesson(_ context.Context, _, _, lessonID uuid.UUID) (*dto.ProgressResponse, error) {
	s.gotLesson = lessonID
	done := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &dto.ProgressResponse{Progress: 100, CompletedAt: &done}, nil
}

func (s *stubService) GenerateCertificate(context.Context, uuid.UUID, uuid.UUID) (*dto.CertificateResponse, error) {
	return nil, apperror.ErrBadRequest
}

func newRouter(svc enrollment.EnrollmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewEnrollmentHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Next()
	})
	r.POST("/enrollments/course/:id", h.Enroll)
	r.PATCH("/enrollments/course/:id/complete-lesson", h.CompleteLesson)
	r.PATCH("/enrollments/course/:id/generate-certificate", h.GenerateCertificate)
	return r
}

func TestEnrollRoutes(t *testing.T) {
	r := newRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/enrollments/course/7", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/enrollments/course/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCompleteLessonBody(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc)
	path := "/enrollments/course/" + uuid.NewString() + "/complete-lesson"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	lessonID := uuid.New()
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"lessonId":"`+lessonID.String()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, lessonID, svc.gotLesson)

	var body struct {
		Progress    int     `json:"progress"`
		CompletedAt *string `json:"completedAt"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 100, body.Progress)
	assert.NotNil(t, body.CompletedAt)
}

func TestGenerateCertificateIncomplete(t *testing.T) {
	r := newRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/enrollments/course/"+uuid.NewString()+"/generate-certificate", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
