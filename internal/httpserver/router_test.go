package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digihub/internal/handler"
	"digihub/pkg/rbac"
	"digihub/pkg/trace"
	"digihub/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func token(t *testing.T, userID int, role string) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func serve(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndReadiness(t *testing.T) {
	ok := NewRouter(Handlers{}, Options{JWTSecret: testSecret, DB: fakePinger{}})
	assert.Equal(t, http.StatusOK, serve(ok.Engine, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(ok.Engine, http.MethodGet, "/readyz", "").Code)

	down := NewRouter(Handlers{}, Options{JWTSecret: testSecret, DB: fakePinger{err: errors.New("refused")}})
	assert.Equal(t, http.StatusServiceUnavailable, serve(down.Engine, http.MethodGet, "/readyz", "").Code)
}

func TestTraceMiddleware_EchoesOrGenerates(t *testing.T) {
	r := NewRouter(Handlers{}, Options{JWTSecret: testSecret})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(trace.HeaderName, "abc-123")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(trace.HeaderName))

	w = serve(r.Engine, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret))
	r.GET("/me", func(c *gin.Context) {
		uid, _ := c.Get(handler.ContextUserID)
		role, _ := c.Get(handler.ContextRole)
		c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
	})
	r.POST("/groups", RequirePermission(rbac.PermissionGroupManage), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedEngine()

	w := serve(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = serve(r, http.MethodGet, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", token(t, 7, "no-such-role"))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body["user_id"])
	assert.Equal(t, rbac.RoleMember, body["role"])
}

func TestRequirePermission(t *testing.T) {
	r := protectedEngine()
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/groups", token(t, 1, rbac.RoleMember)).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/groups", token(t, 1, rbac.RoleManager)).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	for _, dev := range []bool{false, true} {
		r := gin.New()
		r.Use(RecoveryMiddleware(zap.NewNop(), dev))
		r.GET("/boom", func(*gin.Context) { panic("boom") })

		w := serve(r, http.MethodGet, "/boom", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Internal server error", body["message"])
		_, hasStack := body["stack"]
		assert.Equal(t, dev, hasStack)
	}
}

func TestRouter_EntityRoutesRequireAuth(t *testing.T) {
	r := NewRouter(Handlers{Entity: handler.NewEntityHandler(nil, zap.NewNop())}, Options{JWTSecret: testSecret})
	assert.Equal(t, http.StatusUnauthorized, serve(r.Engine, http.MethodGet, "/tasks/1", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r.Engine, http.MethodDelete, "/projects/1", token(t, 1, rbac.RoleMember)).Code)
}
