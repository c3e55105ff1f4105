package handler

import (
	"CampusChatbot_Backend/internal/config"
	"CampusChatbot_Backend/internal/middleware"
	"CampusChatbot_Backend/internal/storage"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage.CloseDB()
	storage.InitDB(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(storage.CloseDB)

	InitAuth(&config.Config{
		SessionTTL: time.Hour,
		EgovEncKey: "test-enc-key",
		JWTSecret:  "default_secret_key",
	})

	router := gin.New()
	router.POST("/register", Register)
	router.POST("/login", Login)
	router.POST("/logout", Logout)
	router.GET("/health", Health)
	router.GET("/me", middleware.AuthMiddleware(), Me)
	router.GET("/ws/chat", HandleChat)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	parsed := map[string]any{}
	json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func registerAlice(t *testing.T, router *gin.Engine) {
	t.Helper()
	w, _ := doJSON(t, router, http.MethodPost, "/register", map[string]string{
		"username": "alice", "student_id": "S123", "password": "pw1", "egov_password": "egov_pw",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func loginAlice(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w, body := doJSON(t, router, http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "pw1",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := body["session_id"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterThenLogin(t *testing.T) {
	router := setupRouter(t)

	registerAlice(t, router)
	token := loginAlice(t, router)
	assert.NotEmpty(t, token)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	router := setupRouter(t)
	registerAlice(t, router)

	w, body := doJSON(t, router, http.MethodPost, "/register", map[string]string{
		"username": "alice", "student_id": "S999", "password": "pw2", "egov_password": "egov_pw",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username already exists", body["detail"])
}

func TestRegister_BlankFields(t *testing.T) {
	router := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/register", map[string]string{
		"username": "  ", "student_id": "S123", "password": "pw1", "egov_password": "egov_pw",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_WrongPassword_SameBodyAsUnknownUser(t *testing.T) {
	router := setupRouter(t)
	registerAlice(t, router)

	wWrong, bodyWrong := doJSON(t, router, http.MethodPost, "/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, "")
	wUnknown, bodyUnknown := doJSON(t, router, http.MethodPost, "/login", map[string]string{
		"username": "nobody", "password": "wrong",
	}, "")

	// 계정 존재 여부가 응답 내용으로 구분되면 안 됨
	assert.Equal(t, http.StatusUnauthorized, wWrong.Code)
	assert.Equal(t, http.StatusUnauthorized, wUnknown.Code)
	assert.Equal(t, bodyWrong["detail"], bodyUnknown["detail"])
}

func TestMe_WithValidSession(t *testing.T) {
	router := setupRouter(t)
	registerAlice(t, router)
	token := loginAlice(t, router)

	w, body := doJSON(t, router, http.MethodGet, "/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "S123", user["student_id"])
	// 포털 비밀번호는 어떤 응답에도 나오면 안 됨
	assert.NotContains(t, w.Body.String(), "egov")
}

func TestMe_WithoutToken(t *testing.T) {
	router := setupRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_InvalidatesSessionAndIsIdempotent(t *testing.T) {
	router := setupRouter(t)
	registerAlice(t, router)
	token := loginAlice(t, router)

	w, _ := doJSON(t, router, http.MethodPost, "/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// 로그아웃된 토큰으로 보호된 엔드포인트 접근 불가
	w, _ = doJSON(t, router, http.MethodGet, "/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 두 번째 로그아웃도 에러 없이 200
	w, _ = doJSON(t, router, http.MethodPost, "/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}
