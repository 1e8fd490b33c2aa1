package models

import "github.com/google/uuid"

// SuccessResponse is the envelope returned by every successful endpoint.
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// ErrorBody is the envelope returned by every failed endpoint. Status mirrors
// the HTTP status code so clients behind non-transparent proxies can still
// branch on the error kind.
type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Page is the uniform paginated envelope returned by list queries.
type Page[T any] struct {
	Rows    []T   `json:"rows"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"perPage"`
}

// ListQuery carries the normalized list parameters accepted by every
// paginated endpoint. PageNumber is 0-based as sent by clients; the query
// engine normalizes it to 1-based before computing offsets.
type ListQuery struct {
	PageNumber   int
	PerPage      int
	Sort         string
	Order        string
	Q            string
	IgnoreGlobal []string
	Filters      map[string]string
}

// FieldUpdate names a single field assignment applied by a bulk action.
type FieldUpdate struct {
	Name  string      `json:"name" binding:"required"`
	Value interface{} `json:"value"`
}

// BulkDeleteRequest is the body of DELETE /admin/users, /admin/admins and /roles.
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// BulkActionRequest is the body of the */action endpoints.
type BulkActionRequest struct {
	IDs   []uuid.UUID `json:"ids" binding:"required,min=1"`
	Field FieldUpdate `json:"field" binding:"required"`
}
