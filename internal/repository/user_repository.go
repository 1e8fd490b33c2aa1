package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"admin-service/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(id uuid.UUID, updates map[string]interface{}) error
	List(q models.ListQuery) (*models.Page[models.User], error)
	ListAll() ([]models.User, error)
	BulkDelete(ids []uuid.UUID) (int64, error)
	BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	// Case-insensitive: email uniqueness must not depend on client casing.
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userRepository) List(q models.ListQuery) (*models.Page[models.User], error) {
	return FindAllPaginate[models.User](r.db, UserSchema, q)
}

func (r *userRepository) ListAll() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at ASC, id ASC").Find(&users).Error
	return users, err
}

func (r *userRepository) BulkDelete(ids []uuid.UUID) (int64, error) {
	return BulkDelete[models.User](r.db, UserSchema, ids)
}

func (r *userRepository) BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	return BulkUpdateField[models.User](r.db, UserSchema, ids, field)
}
