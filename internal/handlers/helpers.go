package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

// Query parameters consumed by the list machinery itself; everything else is
// treated as an equality filter.
var reservedListParams = map[string]bool{
	"pageNumber":   true,
	"perPage":      true,
	"sort":         true,
	"order":        true,
	"q":            true,
	"ignoreGlobal": true,
}

// parseListQuery reads the shared list parameters from the query string.
// Unknown parameters become equality filters; the query engine validates them
// against the entity's schema.
func parseListQuery(c *gin.Context, defaultPerPage, maxPerPage int) (models.ListQuery, error) {
	q := models.ListQuery{
		Sort:    c.Query("sort"),
		Order:   c.Query("order"),
		Q:       c.Query("q"),
		Filters: map[string]string{},
		PerPage: defaultPerPage,
	}

	if raw := c.Query("pageNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, apperr.NewValidation("pageNumber must be an integer", nil)
		}
		q.PageNumber = n
	}
	if raw := c.Query("perPage"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return q, apperr.NewValidation("perPage must be a positive integer", nil)
		}
		if n > maxPerPage {
			n = maxPerPage
		}
		q.PerPage = n
	}
	if raw := c.Query("ignoreGlobal"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			if field = strings.TrimSpace(field); field != "" {
				q.IgnoreGlobal = append(q.IgnoreGlobal, field)
			}
		}
	}

	for key, values := range c.Request.URL.Query() {
		if reservedListParams[key] || len(values) == 0 {
			continue
		}
		q.Filters[key] = values[0]
	}

	return q, nil
}

// parseUUIDParam reads a uuid path parameter.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.NewValidation("invalid "+name+" format", nil)
	}
	return id, nil
}

func respondOK(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, models.SuccessResponse{Data: data, Message: message})
}

func respondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, models.SuccessResponse{Data: data, Message: message})
}

// fail records the error for the error handler middleware and aborts.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindingError translates gin binding failures into the validation error shape.
func bindingError(err error) error {
	return apperr.NewValidation(err.Error(), nil)
}
