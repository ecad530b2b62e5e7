package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/course-registry-api/internal/middleware"
	"github.com/noah-isme/course-registry-api/internal/registry"
	"github.com/noah-isme/course-registry-api/internal/repository"
	"github.com/noah-isme/course-registry-api/internal/service"
	"github.com/noah-isme/course-registry-api/pkg/storage"
)

const testPrefix = "/api/v1"

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct{ Code string } `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func buildTestRouter(t *testing.T) (*gin.Engine, *registry.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(registry.Options{Logger: zap.NewNop()})
	metrics := service.NewMetricsService()
	cache := service.NewCacheService(repository.NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute)), metrics, time.Minute, zap.NewNop(), true)
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	handlers := Handlers{
		Students:    NewStudentHandler(service.NewStudentService(reg, cache, nil, nil)),
		Courses:     NewCourseHandler(service.NewCourseService(reg, cache, nil, nil)),
		Enrollments: NewEnrollmentHandler(service.NewEnrollmentService(reg, cache, metrics, nil, nil, time.Minute)),
		Statistics:  NewStatisticsHandler(service.NewStatisticsService(reg, cache, metrics, time.Minute)),
		Activity:    NewActivityHandler(service.NewActivityService(reg, nil)),
		Imports:     NewImportHandler(service.NewImportService(reg, cache, metrics, nil)),
		Exports: NewExportHandler(service.NewExportService(reg, store, storage.NewSignedURLSigner("secret", time.Hour),
			service.ExportConfig{APIPrefix: testPrefix}, metrics, nil, nil, nil)),
		Metrics: NewMetricsHandler(metrics, nil),
	}

	router := gin.New()
	router.Use(internalmiddleware.WithResponseMeta(), internalmiddleware.Metrics(metrics))
	RegisterRoutes(router, testPrefix, handlers)
	return router, reg
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, testPrefix+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return performRequest(router, req)
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRoutesStudentLifecycle(t *testing.T) {
	router, _ := buildTestRouter(t)

	resp := doJSON(router, http.MethodPost, "/students", `{"id":"S1","full_name":"Alice"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(router, http.MethodPost, "/students", `{"id":"S1","full_name":"Again"}`)
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "CONFLICT", decode(t, resp).Error.Code)

	resp = doJSON(router, http.MethodPost, "/students", `{"id":"S2"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodPut, "/students/S1", `{"full_name":"Alicia"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"full_name":"Alicia"`)

	resp = doJSON(router, http.MethodGet, "/students?name=Alicia", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"total_count":1`)

	resp = doJSON(router, http.MethodDelete, "/students/S1", "")
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = doJSON(router, http.MethodGet, "/students/S1", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRoutesEnrollWaitlistAndDrop(t *testing.T) {
	router, reg := buildTestRouter(t)
	for _, id := range []string{"S1", "S2"} {
		require.NoError(t, reg.AddStudent(id, "Name "+id))
	}

	resp := doJSON(router, http.MethodPost, "/courses", `{"code":"C1","title":"Algebra","instructor":"Dr. Smith","capacity":1}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(router, http.MethodPost, "/enrollments", `{"student_id":"S1","course_code":"C1"}`)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(router, http.MethodPost, "/enrollments", `{"student_id":"S2","course_code":"C1"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)
	env := decode(t, resp)
	assert.Equal(t, "WAITLISTED", env.Error.Code)
	assert.Contains(t, string(env.Data), `"waitlist_position":1`)

	resp = doJSON(router, http.MethodDelete, "/enrollments/S1/C1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"promoted_student_id":"S2"`)

	resp = doJSON(router, http.MethodGet, "/courses/C1/students", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enrolled_students":["S2"]`)

	resp = doJSON(router, http.MethodGet, "/students/S2/courses", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"code":"C1"`)

	resp = doJSON(router, http.MethodDelete, "/enrollments/S1/C1", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRoutesCachedReadsReportCacheHit(t *testing.T) {
	router, reg := buildTestRouter(t)
	require.NoError(t, reg.AddStudent("S1", "Alice"))
	require.NoError(t, reg.AddCourse("C1", "Algebra", "Dr. Smith", 5))
	_, err := reg.EnrollStudentInCourse("S1", "C1")
	require.NoError(t, err)

	first := decode(t, doJSON(router, http.MethodGet, "/statistics", ""))
	assert.Equal(t, false, first.Meta["cache_hit"])
	second := decode(t, doJSON(router, http.MethodGet, "/statistics", ""))
	assert.Equal(t, true, second.Meta["cache_hit"])

	resp := doJSON(router, http.MethodGet, "/instructors/Dr.%20Smith/students", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"S1":"Alice"`)
}

func TestRoutesActivityLast(t *testing.T) {
	router, reg := buildTestRouter(t)
	for _, id := range []string{"S1", "S2", "S3"} {
		require.NoError(t, reg.AddStudent(id, "Name "+id))
	}

	resp := doJSON(router, http.MethodGet, "/activities?last=1", "")
	require.Equal(t, http.StatusOK, resp.Code)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, float64(3), entries[0]["seq"])

	for _, last := range []string{"0", "-1"} {
		resp = doJSON(router, http.MethodGet, "/activities?last="+last, "")
		require.Equal(t, http.StatusOK, resp.Code, last)
		entries = nil
		require.NoError(t, json.Unmarshal(decode(t, resp).Data, &entries))
		assert.Empty(t, entries, last)
	}

	resp = doJSON(router, http.MethodGet, "/activities?last=x", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/activities/archive", "")
	require.Equal(t, http.StatusPreconditionFailed, resp.Code)
}

func TestRoutesImportMultipartAndRaw(t *testing.T) {
	router, reg := buildTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "seed.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("STUDENT,S1,Alice\nCOURSE,C1,Algebra,Dr. Smith,2\nENROLL,S1,C1\n"))
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, testPrefix+"/imports", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"enrollments_loaded":1`)
	assert.True(t, reg.IsEnrolled("S1", "C1"))

	req, _ = http.NewRequest(http.MethodPost, testPrefix+"/imports?source=extra.yaml", strings.NewReader("students:\n  - {id: S2, name: Bob}\n"))
	req.Header.Set("Content-Type", "application/x-yaml")
	resp = performRequest(router, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"students_loaded":1`)
	assert.True(t, reg.StudentExists("S2"))
}

func TestRoutesExportAndDownload(t *testing.T) {
	router, reg := buildTestRouter(t)
	require.NoError(t, reg.AddCourse("C1", "Algebra", "Dr. Smith", 5))

	resp := doJSON(router, http.MethodPost, "/exports", `{"kind":"courses","format":"csv"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
	var created struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &created))

	req, _ := http.NewRequest(http.MethodGet, created.URL, nil)
	download := performRequest(router, req)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "text/csv", download.Header().Get("Content-Type"))
	assert.Contains(t, download.Body.String(), "C1,Algebra,Dr. Smith,5,0,0")

	resp = doJSON(router, http.MethodGet, "/exports/download", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRoutesOps(t *testing.T) {
	router, _ := buildTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/metrics"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		resp := performRequest(router, req)
		assert.Equal(t, http.StatusOK, resp.Code, path)
	}
}
