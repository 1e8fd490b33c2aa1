package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

// BulkDelete deletes every row whose id is in ids, skipping is_system rows
// for protected entities. It returns the number of rows actually removed;
// callers distinguish "all ids protected or nonexistent" from success by the
// count, not by an error.
func BulkDelete[T any](db *gorm.DB, schema EntitySchema, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.NewValidation("ids must not be empty", nil)
	}

	var model T
	query := db.Where("id IN ?", ids)
	if schema.Protected {
		query = query.Where("is_system = ?", false)
	}

	result := query.Delete(&model)
	if result.Error != nil {
		return 0, apperr.NewInternal("bulk delete failed", result.Error)
	}
	return result.RowsAffected, nil
}

// BulkUpdateField applies a single field assignment to every row whose id is
// in ids. The field name must be on the entity's mutable allowlist; a
// client-supplied name is never written into a dynamic update unchecked.
// Protected entities skip is_system rows.
func BulkUpdateField[T any](db *gorm.DB, schema EntitySchema, ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.NewValidation("ids must not be empty", nil)
	}

	column, ok := schema.Mutable[field.Name]
	if !ok {
		return 0, apperr.NewValidation(fmt.Sprintf("field %q is not bulk-updatable", field.Name), nil)
	}

	var model T
	query := db.Model(&model).Where("id IN ?", ids)
	if schema.Protected {
		query = query.Where("is_system = ?", false)
	}

	result := query.Updates(map[string]interface{}{
		column:       field.Value,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return 0, apperr.NewInternal("bulk update failed", result.Error)
	}
	return result.RowsAffected, nil
}
