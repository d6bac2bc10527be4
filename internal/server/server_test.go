package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/prajaktamali15/e-learning-platform/internal/bootstrap"
	"github.com/prajaktamali15/e-learning-platform/internal/config"
	"github.com/prajaktamali15/e-learning-platform/internal/testutil"
	"github.com/prajaktamali15/e-learning-platform/pkg/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:               "test",
		AllowedOrigins:       []string{"http://localhost:3000"},
		JWTSecret:            "test-secret",
		JWTTTL:               time.Hour,
		StorageDriver:        "local",
		UploadDir:            t.TempDir(),
		CertificateDir:       t.TempDir(),
		MaxLessonFileBytes:   1 << 20,
		MaxPhotoBytes:        1 << 20,
		CertificateLockTTL:   time.Second,
		AnalyticsCacheTTL:    time.Minute,
		LoginLockout:         time.Minute,
		LoginMaxAttempts:     5,
		ReindexSchedule:      "@daily",
		MediaCleanupSchedule: "@every 12h",
	}

	db := testutil.NewDB(t)
	if err := bootstrap.SeedAdminUser(db, "admin@example.com", "admin-pass", logger.Nop()); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	s, err := NewServer(cfg, db, nil, logger.Nop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s
}

func call(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func accessToken(t *testing.T, s *Server, path string, body map[string]string) string {
	t.Helper()
	w, out := call(t, s, http.MethodPost, path, "", body)
	if w.Code != http.StatusCreated && w.Code != http.StatusOK {
		t.Fatalf("%s: status=%d body=%s", path, w.Code, w.Body.String())
	}
	tok, _ := out["access_token"].(string)
	if tok == "" {
		t.Fatalf("%s: missing access_token in %s", path, w.Body.String())
	}
	return tok
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w, out := call(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["database"])
	assert.Equal(t, "disabled", out["redis"])
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t)
	student := accessToken(t, s, "/auth/register", map[string]string{"email": "s@example.com", "password": "secret1"})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public catalog", http.MethodGet, "/courses/public", "", http.StatusOK},
		{"categories", http.MethodGet, "/categories", "", http.StatusOK},
		{"malformed course id", http.MethodGet, "/courses/not-a-uuid", "", http.StatusBadRequest},
		{"missing token", http.MethodGet, "/users/me", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/users/me", "garbage", http.StatusUnauthorized},
		{"own profile", http.MethodGet, "/users/me", student, http.StatusOK},
		{"student creating course", http.MethodPost, "/courses", student, http.StatusForbidden},
		{"student on admin surface", http.MethodGet, "/admin/courses", student, http.StatusForbidden},
		{"student listing users", http.MethodGet, "/users", student, http.StatusForbidden},
		{"student roster", http.MethodGet, "/enrollments/course/00000000-0000-0000-0000-000000000000/students", student, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := call(t, s, tc.method, tc.path, tc.token, nil)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestCourseLifecycle(t *testing.T) {
	s := newTestServer(t)

	instructor := accessToken(t, s, "/auth/register", map[string]string{
		"email": "ada@example.com", "password": "secret1", "name": "Ada", "role": "INSTRUCTOR",
	})
	student := accessToken(t, s, "/auth/register", map[string]string{
		"email": "bob@example.com", "password": "secret1", "name": "Bob",
	})
	admin := accessToken(t, s, "/auth/login", map[string]string{"email": "admin@example.com", "password": "admin-pass"})

	w, course := call(t, s, http.MethodPost, "/courses", instructor, map[string]any{
		"title":   "Go in Practice",
		"lessons": []map[string]string{{"title": "Only lesson"}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create course: status=%d body=%s", w.Code, w.Body.String())
	}
	courseID := course["id"].(string)
	lessons := course["lessons"].([]any)
	lessonID := lessons[0].(map[string]any)["id"].(string)
	assert.Equal(t, "DRAFT", course["status"])

	w, _ = call(t, s, http.MethodPost, "/courses/"+courseID+"/request-publish", instructor, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = call(t, s, http.MethodPatch, "/admin/courses/"+courseID+"/approve", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = call(t, s, http.MethodPost, "/enrollments/course/"+courseID, student, nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, _ = call(t, s, http.MethodPost, "/enrollments/course/"+courseID, student, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = call(t, s, http.MethodPatch, "/enrollments/course/"+courseID+"/generate-certificate", student, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out := call(t, s, http.MethodPatch, "/enrollments/course/"+courseID+"/complete-lesson", student, map[string]string{"lessonId": lessonID})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 100, out["progress"])

	w, out = call(t, s, http.MethodPatch, "/enrollments/course/"+courseID+"/generate-certificate", student, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	certURL, _ := out["certificateUrl"].(string)
	assert.True(t, strings.HasPrefix(certURL, "/certificates/"), certURL)

	w, _ = call(t, s, http.MethodGet, certURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, out = call(t, s, http.MethodGet, "/analytics/course/"+courseID+"/completion", instructor, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 100, out["completionRate"])

	// published courses can no longer be deleted by their instructor
	w, _ = call(t, s, http.MethodDelete, "/courses/"+courseID, instructor, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = call(t, s, http.MethodDelete, "/admin/courses/"+courseID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
