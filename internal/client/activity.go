package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"digihub/internal/model"
)

// Feed fetches one page of an entity's merged activity feed.
func (c *Client) Feed(ctx context.Context, entityType string, entityID, page, limit int) (*model.Feed, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/activities/%s/%d", url.PathEscape(entityType), entityID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	feed := &model.Feed{Items: []model.FeedItem{}}
	env, err := c.do(ctx, http.MethodGet, path, nil, &feed.Items)
	if err != nil {
		return nil, err
	}
	if len(env.Pagination) > 0 {
		if err := json.Unmarshal(env.Pagination, &feed.Pagination); err != nil {
			return nil, fmt.Errorf("decode pagination: %w", err)
		}
	}
	return feed, nil
}

// Replies fetches the direct replies of a comment, oldest first.
func (c *Client) Replies(ctx context.Context, commentID int) ([]model.Comment, error) {
	var out []model.Comment
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/activities/comments/%d/replies", commentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type NewComment struct {
	EntityType string `json:"entityType"`
	EntityID   int    `json:"entityId"`
	Content    string `json:"content"`
	ParentID   *int   `json:"parentId,omitempty"`
}

func (c *Client) AddComment(ctx context.Context, in NewComment) (*model.Comment, error) {
	var out model.Comment
	if _, err := c.do(ctx, http.MethodPost, "/activities/comments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditComment(ctx context.Context, commentID int, content string) (*model.Comment, error) {
	var out model.Comment
	path := fmt.Sprintf("/activities/comments/%d", commentID)
	if _, err := c.do(ctx, http.MethodPut, path, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/activities/comments/%d", commentID), nil, nil)
	return err
}
