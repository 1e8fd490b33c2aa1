package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
	"admin-service/internal/repository"
)

// UserService owns user CRUD: creation with email uniqueness, partial
// updates, listing through the query engine and the bulk actions.
type UserService struct {
	repo       repository.UserRepository
	bcryptCost int
	log        *logrus.Entry
}

func NewUserService(repo repository.UserRepository, bcryptCost int, log *logrus.Entry) *UserService {
	return &UserService{repo: repo, bcryptCost: bcryptCost, log: log}
}

func (s *UserService) Create(req *models.CreateUserRequest) (*models.User, error) {
	if _, err := s.repo.GetByEmail(req.Email); err == nil {
		return nil, apperr.NewConflict("user with this email already exists", map[string]interface{}{"email": req.Email})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("failed to check email uniqueness", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.NewInternal("failed to hash password", err)
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		PhoneNo:  req.PhoneNo,
		Password: string(hash),
		Status:   1,
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.repo.Create(user); err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	s.log.WithField("user_id", user.ID).Info("user created")
	return user, nil
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	return user, nil
}

func (s *UserService) Update(id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "user")
	}

	updates := map[string]interface{}{}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.repo.GetByEmail(*req.Email); err == nil && existing.ID != id {
			return nil, apperr.NewConflict("user with this email already exists", map[string]interface{}{"email": *req.Email})
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewInternal("failed to check email uniqueness", err)
		}
		updates["email"] = *req.Email
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PhoneNo != nil {
		updates["phone_no"] = *req.PhoneNo
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.repo.Update(id, updates); err != nil {
			return nil, apperr.FromStorage(err, "user")
		}
	}
	return s.Get(id)
}

func (s *UserService) List(q models.ListQuery) (*models.Page[models.User], error) {
	return s.repo.List(q)
}

func (s *UserService) ListAll() ([]models.User, error) {
	users, err := s.repo.ListAll()
	if err != nil {
		return nil, apperr.NewInternal("failed to list users", err)
	}
	return users, nil
}

func (s *UserService) BulkDelete(ids []uuid.UUID) (int64, error) {
	count, err := s.repo.BulkDelete(ids)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NewNotFound("deletable user")
	}
	return count, nil
}

func (s *UserService) BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	count, err := s.repo.BulkUpdateField(ids, field)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NewNotFound("updatable user")
	}
	return count, nil
}
