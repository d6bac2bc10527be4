package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/prajaktamali15/e-learning-platform/internal/entity"
	"github.com/prajaktamali15/e-learning-platform/internal/modules/course/dto"
	course "github.com/prajaktamali15/e-learning-platform/internal/modules/course/service"
	"github.com/prajaktamali15/e-learning-platform/pkg/apperror"
)

// stubService implements only what the tests call; anything else panics.
type stubService struct {
	course.CourseService

	gotInput  dto.LessonInput
	gotFiles  course.LessonFiles
	gotStatus string
}

func (s *stubService) AddLesson(_ context.Context, _, courseID uuid.UUID, input dto.LessonInput, files course.LessonFiles) (*dto.LessonResponse, error) {
	s.gotInput = input
	s.gotFiles = files
	return &dto.LessonResponse{ID: uuid.New(), CourseID: courseID, Title: input.Title}, nil
}

func (s *stubService) UpdateStatusByInstructor(_ context.Context, _, courseID uuid.UUID, status string) (*dto.CourseResponse, error) {
	s.gotStatus = status
	if status == "PUBLISHED" {
		return nil, apperror.ErrBadRequest
	}
	return &dto.CourseResponse{ID: courseID, Status: entity.CoursePending}, nil
}

func (s *stubService) GetByID(_ context.Context, id uuid.UUID) (*dto.CourseResponse, error) {
	return nil, apperror.ErrNotFound
}

func newRouter(svc course.CourseService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCourseHandler(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID.String())
		c.Next()
	})
	r.GET("/courses/:id", h.GetCourse)
	r.POST("/courses/:id/lessons", h.AddLesson)
	r.PATCH("/courses/:id/status", h.UpdateStatus)
	return r
}

func TestGetCourseRejectsMalformedID(t *testing.T) {
	r := newRouter(&stubService{}, uuid.New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/42", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddLessonJSON(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, uuid.New())

	body := `{"title":"Channels","content":"<p>buffered</p>","videoUrl":"https://cdn.example/v.mp4"}`
	req := httptest.NewRequest(http.MethodPost, "/courses/"+uuid.NewString()+"/lessons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Channels", svc.gotInput.Title)
	if assert.NotNil(t, svc.gotInput.VideoURL) {
		assert.Equal(t, "https://cdn.example/v.mp4", *svc.gotInput.VideoURL)
	}
	assert.Nil(t, svc.gotFiles.Video)
}

func TestAddLessonMultipart(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, uuid.New())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Recorded lecture")
	part, err := mw.CreateFormFile("videoFile", "lecture.mp4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("fake video bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/courses/"+uuid.NewString()+"/lessons", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Recorded lecture", svc.gotInput.Title)
	if assert.NotNil(t, svc.gotFiles.Video) {
		assert.Equal(t, "lecture.mp4", svc.gotFiles.Video.Filename)
	}
	assert.Nil(t, svc.gotFiles.Attachment)
}

func TestUpdateStatus(t *testing.T) {
	svc := &stubService{}
	r := newRouter(svc, uuid.New())
	url := "/courses/" + uuid.NewString() + "/status"

	req := httptest.NewRequest(http.MethodPatch, url, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPatch, url, strings.NewReader(`{"status":"PUBLISHED"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPatch, url, strings.NewReader(`{"status":"PENDING"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var res dto.CourseResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, entity.CoursePending, res.Status)
	assert.Equal(t, "PENDING", svc.gotStatus)
}
