package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

const defaultPerPage = 10

// FindAllPaginate runs a filtered, searched, sorted and paginated query over
// any entity and returns the uniform page envelope. Clients send a 0-based
// pageNumber; it is normalized to 1-based here. Total counts every row
// matching filters and search, ignoring pagination, so callers can compute
// page counts.
func FindAllPaginate[T any](db *gorm.DB, schema EntitySchema, q models.ListQuery) (*models.Page[T], error) {
	page := q.PageNumber + 1
	if page < 1 {
		return nil, apperr.NewValidation("pageNumber must not be negative", nil)
	}

	perPage := q.PerPage
	if perPage == 0 {
		perPage = defaultPerPage
	}
	if perPage < 0 {
		return nil, apperr.NewValidation("perPage must be a positive integer", nil)
	}

	sort := q.Sort
	if sort == "" {
		sort = "createdAt"
	}
	sortColumn, ok := schema.Columns[sort]
	if !ok {
		return nil, apperr.NewValidation(fmt.Sprintf("unknown sort field %q", sort), nil)
	}

	order := strings.ToUpper(q.Order)
	if order == "" {
		order = "ASC"
	}
	if order != "ASC" && order != "DESC" {
		return nil, apperr.NewValidation("order must be ASC or DESC", nil)
	}

	var model T
	query := db.Model(&model)

	// Equality filters, ANDed. Unknown keys are rejected rather than
	// silently dropped.
	for field, value := range q.Filters {
		column, ok := schema.Columns[field]
		if !ok {
			return nil, apperr.NewValidation(fmt.Sprintf("unknown filter field %q", field), nil)
		}
		query = query.Where(fmt.Sprintf("%s = ?", column), value)
	}

	// Free-text search: case-insensitive substring match ORed across the
	// searchable fields, minus any field listed in ignoreGlobal.
	if q.Q != "" {
		ignored := make(map[string]bool, len(q.IgnoreGlobal))
		for _, field := range q.IgnoreGlobal {
			ignored[field] = true
		}

		var clauses []string
		var args []interface{}
		pattern := "%" + strings.ToLower(q.Q) + "%"
		for _, field := range schema.Searchable {
			if ignored[field] {
				continue
			}
			clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE ?", schema.Columns[field]))
			args = append(args, pattern)
		}
		if len(clauses) > 0 {
			query = query.Where(strings.Join(clauses, " OR "), args...)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.NewInternal("failed to count rows", err)
	}

	rows := make([]T, 0, perPage)
	offset := (page - 1) * perPage
	// Ties broken by primary key so pagination stays deterministic across pages.
	err := query.
		Order(fmt.Sprintf("%s %s, id ASC", sortColumn, order)).
		Offset(offset).
		Limit(perPage).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.NewInternal("failed to list rows", err)
	}

	return &models.Page[T]{
		Rows:    rows,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}
