package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"digihub/internal/model"
	"digihub/internal/repository"
	"digihub/internal/repository/mocks"
	"digihub/internal/service/activity"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware.
func asUser(id int, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, id)
		c.Set(ContextRole, role)
		c.Next()
	}
}

func newActivityRouter(repo *mocks.ActivityRepository, userID int, role string) *gin.Engine {
	h := NewActivityHandler(activity.NewService(repo, nil), zap.NewNop())
	r := gin.New()
	r.Use(asUser(userID, role))
	r.GET("/activities/:entityType/:entityId", h.GetFeed)
	r.GET("/activities/comments/:commentId/replies", h.GetReplies)
	r.POST("/activities/comments", h.CreateComment)
	r.PUT("/activities/comments/:commentId", h.UpdateComment)
	r.DELETE("/activities/comments/:commentId", h.DeleteComment)
	return r
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestGetFeed_InvalidEntityType(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	w, env := do(t, newActivityRouter(repo, 1, "member"), http.MethodGet, "/activities/epic/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid entity type", env.Message)
	repo.AssertNotCalled(t, "ListLogs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFeed_ReturnsItemsAndPagination(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mocks.ActivityRepository{}
	repo.On("ListLogs", mock.Anything, model.KindTask, 4, 2).Return([]model.ActivityLog{
		{ID: 1, Action: model.ActionCreated, EntityKind: model.KindTask, EntityID: 4, CreatedAt: now.Add(-time.Hour)},
	}, nil)
	repo.On("ListTopLevelComments", mock.Anything, model.KindTask, 4, 2).Return([]model.Comment{
		{ID: 7, EntityKind: model.KindTask, EntityID: 4, UserID: 1, Content: "hi", CreatedAt: now},
	}, nil)
	repo.On("CountFeed", mock.Anything, model.KindTask, 4).Return(3, nil)

	w, env := do(t, newActivityRouter(repo, 1, "member"), http.MethodGet, "/activities/task/4?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, model.Pagination{Total: 3, Page: 1, Limit: 2, TotalPages: 2}, *env.Pagination)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "comment", items[0]["type"])
	assert.Equal(t, "log", items[1]["type"])
	assert.Equal(t, "created", items[1]["action"])
}

func TestCreateComment_Created(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("CreateComment", mock.Anything, mock.MatchedBy(func(c *model.Comment) bool {
		return c.UserID == 9 && c.Content == "Looks good" && c.EntityKind == model.KindModule
	})).Run(func(args mock.Arguments) {
		c := args.Get(1).(*model.Comment)
		c.ID = 55
		c.UserName = "Dana"
	}).Return(nil)

	w, env := do(t, newActivityRouter(repo, 9, "member"), http.MethodPost, "/activities/comments",
		map[string]any{"entityType": "module", "entityId": 3, "content": "  Looks good "})
	require.Equal(t, http.StatusCreated, w.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "comment", data["type"])
	assert.EqualValues(t, 55, data["id"])
	assert.Equal(t, "Dana", data["userName"])
}

func TestCreateComment_MissingFields(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	w, env := do(t, newActivityRouter(repo, 9, "member"), http.MethodPost, "/activities/comments",
		map[string]any{"entityType": "task", "entityId": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	repo.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
}

func TestCreateComment_ParentNotFound(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("CreateComment", mock.Anything, mock.Anything).Return(repository.ErrParentNotFound)

	parent := 999
	w, env := do(t, newActivityRouter(repo, 9, "member"), http.MethodPost, "/activities/comments",
		map[string]any{"entityType": "task", "entityId": 3, "content": "reply", "parentId": parent})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Parent comment not found", env.Message)
}

func TestUpdateComment_NotAuthor(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("GetComment", mock.Anything, 5).Return(&model.Comment{ID: 5, UserID: 1}, nil)

	w, env := do(t, newActivityRouter(repo, 2, "admin"), http.MethodPut, "/activities/comments/5",
		map[string]any{"content": "edited"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	repo.AssertNotCalled(t, "UpdateComment", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteComment_NotFound(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("GetComment", mock.Anything, 5).Return(nil, repository.ErrNotFound)

	w, env := do(t, newActivityRouter(repo, 2, "member"), http.MethodDelete, "/activities/comments/5", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Comment not found", env.Message)
}

func TestDeleteComment_AdminMayDeleteOthers(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	repo.On("GetComment", mock.Anything, 5).Return(&model.Comment{ID: 5, UserID: 1}, nil)
	repo.On("DeleteComment", mock.Anything, 5).Return(nil)

	w, env := do(t, newActivityRouter(repo, 2, "admin"), http.MethodDelete, "/activities/comments/5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	repo.AssertExpectations(t)
}

func TestGetReplies_BadID(t *testing.T) {
	repo := &mocks.ActivityRepository{}
	w, _ := do(t, newActivityRouter(repo, 2, "member"), http.MethodGet, "/activities/comments/abc/replies", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
