package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admin-service/internal/models"
)

type AdminRepository interface {
	Create(admin *models.Admin) error
	GetByID(id uuid.UUID) (*models.Admin, error)
	GetByEmail(email string) (*models.Admin, error)
	Update(id uuid.UUID, updates map[string]interface{}) error
	// UpdatePassword rotates the stored hash, keeping the outgoing hash as
	// previous_password for re-use checks.
	UpdatePassword(id uuid.UUID, newHash string) error
	List(q models.ListQuery) (*models.Page[models.Admin], error)
	BulkDelete(ids []uuid.UUID) (int64, error)
	BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(admin *models.Admin) error {
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = time.Now()
	return r.db.Create(admin).Error
}

func (r *adminRepository) GetByID(id uuid.UUID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("id = ?", id).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Admin{}).Where("id = ?", id).Updates(updates).Error
}

func (r *adminRepository) UpdatePassword(id uuid.UUID, newHash string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var admin models.Admin
		if err := tx.Where("id = ?", id).First(&admin).Error; err != nil {
			return err
		}
		return tx.Model(&admin).Updates(map[string]interface{}{
			"password":          newHash,
			"previous_password": admin.Password,
			"updated_at":        time.Now(),
		}).Error
	})
}

func (r *adminRepository) List(q models.ListQuery) (*models.Page[models.Admin], error) {
	return FindAllPaginate[models.Admin](r.db, AdminSchema, q)
}

func (r *adminRepository) BulkDelete(ids []uuid.UUID) (int64, error) {
	return BulkDelete[models.Admin](r.db, AdminSchema, ids)
}

func (r *adminRepository) BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	return BulkUpdateField[models.Admin](r.db, AdminSchema, ids, field)
}
