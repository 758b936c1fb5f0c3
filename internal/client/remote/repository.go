package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"budgetbook/internal/client"
)

// repository maps one front-end shape T to its wire shape W.
type repository[T client.Entity[T], W any] struct {
	client   *Client
	path     string
	toWire   func(id client.ID, item T) W
	fromWire func(W) T
}

func (r *repository[T, W]) List(ctx context.Context) ([]T, error) {
	var wire []W
	if _, err := r.client.do(ctx, http.MethodGet, r.path, nil, &wire); err != nil {
		return nil, err
	}
	items := make([]T, 0, len(wire))
	for _, w := range wire {
		items = append(items, r.fromWire(w))
	}
	return items, nil
}

func (r *repository[T, W]) Create(ctx context.Context, item T) (T, error) {
	var out W
	decoded, err := r.client.do(ctx, http.MethodPost, r.path, r.toWire("", item), &out)
	if err != nil {
		return *new(T), err
	}
	if !decoded {
		return *new(T), fmt.Errorf("POST %s: empty response body", r.path)
	}
	return r.fromWire(out), nil
}

// Update PUTs the item; a 204 answer yields the submitted item with id.
func (r *repository[T, W]) Update(ctx context.Context, id client.ID, item T) (T, error) {
	var out W
	decoded, err := r.client.do(ctx, http.MethodPut, r.itemPath(id), r.toWire(id, item), &out)
	if err != nil {
		return *new(T), err
	}
	if decoded {
		return r.fromWire(out), nil
	}
	return item.WithID(id), nil
}

func (r *repository[T, W]) Delete(ctx context.Context, id client.ID) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
	return err
}

func (r *repository[T, W]) itemPath(id client.ID) string {
	return r.path + "/" + url.PathEscape(string(id))
}
