package client

import (
	"context"
	"fmt"
	"net/http"

	"digihub/internal/model"
	"digihub/internal/tree"
)

// LoadHierarchy implements tree.Loader.
func (c *Client) LoadHierarchy(ctx context.Context) (*model.Hierarchy, error) {
	var h model.Hierarchy
	if _, err := c.do(ctx, http.MethodGet, "/hierarchy", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create implements tree.Mutator.
func (c *Client) Create(ctx context.Context, kind tree.Kind, parent *tree.Ref, name string) error {
	e := kind.Endpoint()
	body := map[string]any{"name": name}
	if parent != nil {
		if e.ParentField == "" {
			return fmt.Errorf("%w: a %s has no parent", tree.ErrInvalidMove, kind)
		}
		body[e.ParentField] = parent.ID
	}
	_, err := c.do(ctx, http.MethodPost, e.Collection, body, nil)
	return err
}

// Rename implements tree.Mutator.
func (c *Client) Rename(ctx context.Context, node tree.Ref, name string) error {
	_, err := c.do(ctx, http.MethodPut, node.Kind.Endpoint().Item(node.ID), map[string]any{"name": name}, nil)
	return err
}

// Delete implements tree.Mutator.
func (c *Client) Delete(ctx context.Context, node tree.Ref) error {
	_, err := c.do(ctx, http.MethodDelete, node.Kind.Endpoint().Item(node.ID), nil, nil)
	return err
}

// Move implements tree.Mutator.
func (c *Client) Move(ctx context.Context, node, newParent tree.Ref) error {
	e := node.Kind.Endpoint()
	if e.MoveMethod == "" {
		return fmt.Errorf("%w: a %s cannot be moved", tree.ErrInvalidMove, node.Kind)
	}
	_, err := c.do(ctx, e.MoveMethod, e.Item(node.ID)+e.MoveSuffix, map[string]any{e.MoveField: newParent.ID}, nil)
	return err
}
