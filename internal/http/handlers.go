package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
)

// CRUDService is the per-entity service the API exposes.
// services.BudgetService and services.ExpenseService satisfy it.
type CRUDService[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id int64, item T) error
	Delete(ctx context.Context, id int64) error
}

// resource serves one entity under basePath.
type resource[T any] struct {
	entity   string // log name, e.g. "budget"
	title    string // message prefix, e.g. "Budget"
	basePath string
	service  CRUDService[T]
	idOf     func(T) int64
}

func (h *resource[T]) register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+h.basePath, h.handleList)
	mux.HandleFunc("POST "+h.basePath, h.handleCreate)
	// a trailing slash names the same collection
	mux.HandleFunc("GET "+h.basePath+"/{$}", h.handleList)
	mux.HandleFunc("POST "+h.basePath+"/{$}", h.handleCreate)
	mux.HandleFunc("GET "+h.basePath+"/{id}", h.handleGet)
	mux.HandleFunc("PUT "+h.basePath+"/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE "+h.basePath+"/{id}", h.handleDelete)
}

func (h *resource[T]) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, r, err, log.OpList)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

func (h *resource[T]) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.notFound().Write(w)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().Body(item).Write(w)
}

func (h *resource[T]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		h.writeError(w, r, err, log.OpCreate)
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		h.writeError(w, r, err, log.OpCreate)
		return
	}

	id := h.idOf(created)
	log.NewStructuredLogger(log.FromContext(r.Context())).LogChange(r.Context(), h.entity, log.OpCreate, id)
	NewJSONResponse().
		Status(http.StatusCreated).
		Location(fmt.Sprintf("%s/%d", h.basePath, id)).
		Body(created).
		Write(w)
}

func (h *resource[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.notFound().Write(w)
		return
	}
	var item T
	if err := decodeJSON(w, r, &item); err != nil {
		h.writeError(w, r, err, log.OpUpdate)
		return
	}
	if err := h.service.Update(r.Context(), id, item); err != nil {
		h.writeError(w, r, err, log.OpUpdate)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).LogChange(r.Context(), h.entity, log.OpUpdate, id)
	NoContent().Write(w)
}

func (h *resource[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		h.notFound().Write(w)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err, log.OpDelete)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).LogChange(r.Context(), h.entity, log.OpDelete, id)
	NoContent().Write(w)
}

func (h *resource[T]) notFound() *JSONResponseBuilder {
	return NotFoundError(h.title + " not found")
}

// writeError maps service errors to status codes. Anything unrecognised is
// logged and answered with a generic 500.
func (h *resource[T]) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		h.notFound().Write(w)
	case errors.Is(err, core.ErrInvalidBudget):
		BadRequestError("Invalid BudgetId").Write(w)
	case errors.Is(err, core.ErrIDMismatch):
		BadRequestError("Id in path does not match id in body").Write(w)
	case errors.Is(err, core.ErrInvalidPayload):
		BadRequestError("Invalid JSON payload").Write(w)
	case core.IsValidation(err):
		BadRequestError(err.Error()).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, op, log.NewFields().WithComponent(h.entity))
		InternalServerError().Write(w)
	}
}
