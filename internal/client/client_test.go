package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"digihub/internal/model"
	"digihub/internal/tree"
	"digihub/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	reply    any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, auth: r.Header.Get("Authorization")}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if reply == nil {
		reply = map[string]any{"success": status < 300}
	}
	_ = json.NewEncoder(w).Encode(reply)
}

func (f *fakeAPI) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return New(srv.URL, append([]Option{WithToken("tok")}, opts...)...)
}

func TestMove_KindEndpointMapping(t *testing.T) {
	cases := []struct {
		node, parent tree.Ref
		method, path string
		field        string
	}{
		{tree.Ref{Kind: tree.KindModule, ID: 5}, tree.Ref{Kind: tree.KindProject, ID: 2}, http.MethodPatch, "/modules/5/move", "project_id"},
		{tree.Ref{Kind: tree.KindTask, ID: 9}, tree.Ref{Kind: tree.KindModule, ID: 3}, http.MethodPut, "/tasks/9", "moduleId"},
		{tree.Ref{Kind: tree.KindProject, ID: 4}, tree.Ref{Kind: tree.KindGroup, ID: 1}, http.MethodPut, "/projects/4", "group_id"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			api := &fakeAPI{}
			c := newTestClient(t, api)
			require.NoError(t, c.Move(context.Background(), tc.node, tc.parent))

			got := api.last()
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, tc.path, got.path)
			assert.Equal(t, "Bearer tok", got.auth)
			assert.Equal(t, map[string]any{tc.field: float64(tc.parent.ID)}, got.body)
		})
	}
}

func TestMove_GroupRejected(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api)
	err := c.Move(context.Background(), tree.Ref{Kind: tree.KindGroup, ID: 1}, tree.Ref{Kind: tree.KindGroup, ID: 2})
	assert.ErrorIs(t, err, tree.ErrInvalidMove)
	assert.Empty(t, api.requests)
}

func TestCreateRenameDelete(t *testing.T) {
	api := &fakeAPI{status: http.StatusCreated}
	c := newTestClient(t, api)
	ctx := context.Background()

	require.NoError(t, c.Create(ctx, tree.KindTask, &tree.Ref{Kind: tree.KindModule, ID: 3}, "Write docs"))
	got := api.last()
	assert.Equal(t, "/tasks", got.path)
	assert.Equal(t, map[string]any{"name": "Write docs", "module_id": float64(3)}, got.body)

	require.NoError(t, c.Create(ctx, tree.KindGroup, nil, "Ops"))
	assert.Equal(t, "/groups", api.last().path)

	api.status = http.StatusOK
	require.NoError(t, c.Rename(ctx, tree.Ref{Kind: tree.KindGroup, ID: 7}, "Infra"))
	assert.Equal(t, http.MethodPut, api.last().method)
	assert.Equal(t, "/groups/7", api.last().path)

	require.NoError(t, c.Delete(ctx, tree.Ref{Kind: tree.KindModule, ID: 8}))
	assert.Equal(t, http.MethodDelete, api.last().method)
	assert.Equal(t, "/modules/8", api.last().path)
}

func TestLoadHierarchy(t *testing.T) {
	api := &fakeAPI{reply: map[string]any{
		"success": true,
		"data": map[string]any{
			"groups":   []any{map[string]any{"id": 1, "name": "G", "expanded": true}},
			"projects": []any{map[string]any{"id": 2, "group_id": 1, "name": "P", "status": "todo", "module_count": 0}},
			"modules":  []any{},
			"tasks":    []any{},
		},
	}}
	c := newTestClient(t, api)

	h, err := c.LoadHierarchy(context.Background())
	require.NoError(t, err)
	require.Len(t, h.Groups, 1)
	assert.True(t, h.Groups[0].Expanded)
	require.Len(t, h.Projects, 1)
	require.NotNil(t, h.Projects[0].GroupID)
	assert.Equal(t, 1, *h.Projects[0].GroupID)
}

func TestFeed(t *testing.T) {
	api := &fakeAPI{reply: map[string]any{
		"success":    true,
		"data":       []any{map[string]any{"type": "comment", "id": 3, "content": "hi", "repliesCount": 2}},
		"pagination": map[string]any{"total": 1, "page": 2, "limit": 10, "totalPages": 1},
	}}
	c := newTestClient(t, api)

	feed, err := c.Feed(context.Background(), "task", 4, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "/activities/task/4", api.last().path)
	assert.Equal(t, "limit=10&page=2", api.last().query)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, model.FeedItemType("comment"), feed.Items[0].Type)
	require.NotNil(t, feed.Items[0].RepliesCount)
	assert.Equal(t, 2, *feed.Items[0].RepliesCount)
	assert.Equal(t, model.Pagination{Total: 1, Page: 2, Limit: 10, TotalPages: 1}, feed.Pagination)
}

func TestAPIErrorCarriesMessage(t *testing.T) {
	api := &fakeAPI{status: http.StatusForbidden, reply: map[string]any{"success": false, "message": "nope"}}
	c := newTestClient(t, api)

	_, err := c.EditComment(context.Background(), 5, "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "nope", apiErr.Message)
	assert.True(t, IsClientError(err))
}

func TestBreaker_OpensOnServerErrorsOnly(t *testing.T) {
	cfg := circuitbreaker.Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Hour, HalfOpenMaxRequests: 1}

	api := &fakeAPI{status: http.StatusNotFound}
	c := newTestClient(t, api, WithBreaker(cfg))
	for i := 0; i < 4; i++ {
		assert.True(t, IsClientError(c.DeleteComment(context.Background(), 1)))
	}

	api.status = http.StatusInternalServerError
	for i := 0; i < 2; i++ {
		assert.Error(t, c.DeleteComment(context.Background(), 1))
	}
	assert.ErrorIs(t, c.DeleteComment(context.Background(), 1), circuitbreaker.ErrCircuitBreakerOpen)
	assert.Len(t, api.requests, 6)
}

func TestLoginStoresToken(t *testing.T) {
	api := &fakeAPI{reply: map[string]any{"success": true, "data": map[string]any{"token": "fresh"}}}
	c := newTestClient(t, api)

	tok, err := c.Login(context.Background(), "a@b.io", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	_, _ = c.Replies(context.Background(), 1)
	assert.Equal(t, "Bearer fresh", api.last().auth)
}
