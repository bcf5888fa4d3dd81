package controller

import (
	"bytes"
	"cbda_exam_backend/internal/config"
	"cbda_exam_backend/internal/repository"
	"cbda_exam_backend/internal/service"
	"cbda_exam_backend/internal/store"
	"cbda_exam_backend/pkg/logger"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.Storage.DataPath = dir
	cfg.Storage.UploadsPath = filepath.Join(dir, "uploads")
	logger.InitLogger(cfg)

	fs := store.NewFileStore()
	userRepo := repository.NewUserRepository(fs, cfg.Storage.UsersFile())
	questionRepo := repository.NewQuestionRepository(fs, cfg.Storage.QuestionsDir())
	resultRepo := repository.NewResultRepository(fs, cfg.Storage.ResultsFile())

	authSvc := service.NewAuthService(userRepo)
	questionSvc := service.NewQuestionService(questionRepo)
	resultSvc := service.NewResultService(resultRepo)
	storageSvc := service.NewStorageService(cfg)

	auth := NewAuthController(authSvc)
	question := NewQuestionController(questionSvc, cfg.Storage.UploadsPath)
	result := NewResultController(resultSvc, storageSvc)
	admin := NewAdminController(authSvc, resultSvc, storageSvc)
	health := NewHealthController(cfg.Storage.DataPath)

	r := gin.New()
	r.GET("/health", health.HealthCheck)
	r.POST("/auth/login", auth.Login)
	r.POST("/auth/register", auth.Register)
	r.POST("/auth/change-email", auth.ChangeEmail)
	r.POST("/questions/upload/:testType/:testId", question.Upload)
	r.GET("/questions/available", question.Available)
	r.GET("/questions/:testType/:testId", question.Fetch)
	r.POST("/results", result.Submit)
	r.GET("/results/user/:userId", result.ByUser)
	r.GET("/results/admin/all", result.AdminAll)
	r.GET("/results/export/csv", result.ExportCSV)
	r.DELETE("/results/:resultId", result.Delete)
	r.GET("/admin/users", admin.Users)
	r.GET("/admin/stats", admin.Stats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var payload map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("bad JSON response %q: %v", w.Body.String(), err)
		}
	}
	return w, payload
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w, payload := doJSON(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if payload["success"] != true || payload["status"] != "ok" || payload["timestamp"] == nil {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	r := newTestRouter(t)

	w, payload := doJSON(t, r, http.MethodPost, "/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK || payload["success"] != true {
		t.Fatalf("register: %d %v", w.Code, payload)
	}
	user := payload["user"].(map[string]interface{})
	if _, leaked := user["password"]; leaked {
		t.Fatal("register response contains password field")
	}

	// 重复邮箱
	w, payload = doJSON(t, r, http.MethodPost, "/auth/register",
		`{"name":"Ana2","email":"ana@example.com","password":"secret456"}`)
	if w.Code != http.StatusBadRequest || payload["success"] != false {
		t.Fatalf("duplicate register: %d %v", w.Code, payload)
	}

	// 错误密码
	w, payload = doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized || payload["success"] != false {
		t.Fatalf("bad password login: %d %v", w.Code, payload)
	}

	// 未知用户
	w, _ = doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email":"nobody@example.com","password":"secret123"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown user login: %d", w.Code)
	}

	w, payload = doJSON(t, r, http.MethodPost, "/auth/login",
		`{"email":"ana@example.com","password":"secret123"}`)
	if w.Code != http.StatusOK || payload["success"] != true {
		t.Fatalf("login: %d %v", w.Code, payload)
	}
}

func TestSubmitResultValidation(t *testing.T) {
	r := newTestRouter(t)

	// score 缺失
	w, payload := doJSON(t, r, http.MethodPost, "/results",
		`{"userName":"Ana","testName":"CBDA Mock 1"}`)
	if w.Code != http.StatusBadRequest || payload["success"] != false {
		t.Fatalf("missing score: %d %v", w.Code, payload)
	}

	w, payload = doJSON(t, r, http.MethodPost, "/results",
		`{"userId":"u1","userName":"Ana","testName":"CBDA Mock 1","testType":"cbda","score":85}`)
	if w.Code != http.StatusOK || payload["success"] != true {
		t.Fatalf("submit: %d %v", w.Code, payload)
	}
	resultID := payload["resultId"].(string)

	w, payload = doJSON(t, r, http.MethodGet, "/results/user/u1", "")
	if w.Code != http.StatusOK || payload["count"].(float64) != 1 {
		t.Fatalf("by user: %d %v", w.Code, payload)
	}

	// 删除不存在的ID
	w, payload = doJSON(t, r, http.MethodDelete, "/results/not-a-real-id", "")
	if w.Code != http.StatusNotFound || payload["success"] != false {
		t.Fatalf("delete unknown: %d %v", w.Code, payload)
	}

	w, _ = doJSON(t, r, http.MethodDelete, "/results/"+resultID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
}

func TestQuestionUploadAndFetch(t *testing.T) {
	r := newTestRouter(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "questions.json")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(`[{"id":"q1","question":"Q?","options":["a","b","c","d"],"correctAnswer":1}]`))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/questions/upload/cbda/test1", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}

	wr, payload := doJSON(t, r, http.MethodGet, "/questions/cbda/test1", "")
	if wr.Code != http.StatusOK || payload["count"].(float64) != 1 {
		t.Fatalf("fetch: %d %v", wr.Code, payload)
	}

	wr, _ = doJSON(t, r, http.MethodGet, "/questions/cbda/missing", "")
	if wr.Code != http.StatusNotFound {
		t.Fatalf("fetch missing set: %d", wr.Code)
	}

	wr, payload = doJSON(t, r, http.MethodGet, "/questions/available", "")
	if wr.Code != http.StatusOK {
		t.Fatalf("available: %d", wr.Code)
	}
	if tests := payload["tests"].([]interface{}); len(tests) != 1 {
		t.Fatalf("available sets: %v", payload)
	}
}

func TestAdminUsersStripsPasswords(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret123"}`)

	w, payload := doJSON(t, r, http.MethodGet, "/admin/users", "")
	if w.Code != http.StatusOK || payload["count"].(float64) != 1 {
		t.Fatalf("users: %d %v", w.Code, payload)
	}
	users := payload["users"].([]interface{})
	u := users[0].(map[string]interface{})
	if _, leaked := u["password"]; leaked {
		t.Fatal("admin user listing leaked password hash")
	}
}

func TestCSVExportContentType(t *testing.T) {
	r := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/results",
		`{"userId":"u1","userName":"Ana","testName":"CBDA Mock 1","score":85}`)

	req := httptest.NewRequest(http.MethodGet, "/results/export/csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), `"Ana"`) {
		t.Fatalf("missing row: %q", w.Body.String())
	}
}
