package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
	"admin-service/internal/repository"
)

const resetTokenTTL = 30 * time.Minute

// resetClaims are the claims carried by a password-reset token.
type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AdminService owns the admin credential lifecycle: account creation with
// uniqueness checks, authentication, profile updates, and password changes
// with re-use prevention.
type AdminService struct {
	repo       repository.AdminRepository
	bcryptCost int
	jwtSecret  []byte
	log        *logrus.Entry
}

func NewAdminService(repo repository.AdminRepository, bcryptCost int, jwtSecret string, log *logrus.Entry) *AdminService {
	return &AdminService{
		repo:       repo,
		bcryptCost: bcryptCost,
		jwtSecret:  []byte(jwtSecret),
		log:        log,
	}
}

// Create registers a new admin account. Email uniqueness is checked before
// the write; a storage-level unique violation (check-then-write race) is
// reported as the same conflict.
func (s *AdminService) Create(req *models.CreateAdminRequest) (*models.Admin, error) {
	if _, err := s.repo.GetByEmail(req.Email); err == nil {
		return nil, apperr.NewConflict("admin with this email already exists", map[string]interface{}{"email": req.Email})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewInternal("failed to check email uniqueness", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.NewInternal("failed to hash password", err)
	}

	admin := &models.Admin{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hash),
		Status:   1,
	}
	if req.Status != nil {
		admin.Status = *req.Status
	}

	if err := s.repo.Create(admin); err != nil {
		return nil, apperr.FromStorage(err, "admin")
	}
	s.log.WithField("admin_id", admin.ID).Info("admin created")
	return admin, nil
}

func (s *AdminService) Get(id uuid.UUID) (*models.Admin, error) {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "admin")
	}
	return admin, nil
}

// Update applies a partial update, re-checking email uniqueness when the
// email changes.
func (s *AdminService) Update(id uuid.UUID, req *models.UpdateAdminRequest) (*models.Admin, error) {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, apperr.FromStorage(err, "admin")
	}

	updates := map[string]interface{}{}
	if req.Email != nil && *req.Email != admin.Email {
		if existing, err := s.repo.GetByEmail(*req.Email); err == nil && existing.ID != id {
			return nil, apperr.NewConflict("admin with this email already exists", map[string]interface{}{"email": *req.Email})
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewInternal("failed to check email uniqueness", err)
		}
		updates["email"] = *req.Email
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if len(updates) > 0 {
		if err := s.repo.Update(id, updates); err != nil {
			return nil, apperr.FromStorage(err, "admin")
		}
	}
	return s.Get(id)
}

func (s *AdminService) List(q models.ListQuery) (*models.Page[models.Admin], error) {
	return s.repo.List(q)
}

// BulkDelete removes the given admins, skipping system records. Zero
// effective rows is an error so callers can tell "all protected or
// nonexistent" apart from success.
func (s *AdminService) BulkDelete(ids []uuid.UUID) (int64, error) {
	count, err := s.repo.BulkDelete(ids)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NewNotFound("deletable admin")
	}
	return count, nil
}

func (s *AdminService) BulkUpdateField(ids []uuid.UUID, field models.FieldUpdate) (int64, error) {
	count, err := s.repo.BulkUpdateField(ids, field)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, apperr.NewNotFound("updatable admin")
	}
	return count, nil
}

// Authenticate verifies credentials for login. Unknown email and wrong
// password produce the same error so the response does not leak which
// accounts exist.
func (s *AdminService) Authenticate(email, password string) (*models.Admin, error) {
	admin, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, apperr.NewUnauthorized("invalid email or password")
	}
	if admin.Status != 1 {
		return nil, apperr.NewUnauthorized("account is disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, apperr.NewUnauthorized("invalid email or password")
	}
	return admin, nil
}

// ChangePassword rotates an admin's password. Re-using the current password
// or the immediately-previous one is rejected.
func (s *AdminService) ChangePassword(id uuid.UUID, currentPassword, newPassword string) error {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return apperr.FromStorage(err, "admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(currentPassword)); err != nil {
		return apperr.NewUnauthorized("current password is incorrect")
	}

	return s.setPassword(admin, newPassword)
}

// UpdateProfile lets an authenticated admin change their own name/email.
func (s *AdminService) UpdateProfile(id uuid.UUID, req *models.UpdateProfileRequest) (*models.Admin, error) {
	return s.Update(id, &models.UpdateAdminRequest{Name: req.Name, Email: req.Email})
}

// IssueResetToken creates a signed, single-purpose, short-lived token for a
// password reset.
func (s *AdminService) IssueResetToken(email string) (string, error) {
	admin, err := s.repo.GetByEmail(email)
	if err != nil {
		return "", apperr.FromStorage(err, "admin")
	}

	now := time.Now()
	claims := resetClaims{
		Purpose: "password_reset",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(resetTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.NewInternal("failed to sign reset token", err)
	}
	return token, nil
}

// ResetPassword redeems a reset token. The same re-use rules apply as for a
// regular password change.
func (s *AdminService) ResetPassword(tokenString, newPassword string) error {
	var claims resetClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.Purpose != "password_reset" {
		return apperr.NewUnauthorized("invalid or expired reset token")
	}

	adminID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return apperr.NewUnauthorized("invalid or expired reset token")
	}

	admin, err := s.repo.GetByID(adminID)
	if err != nil {
		return apperr.FromStorage(err, "admin")
	}
	return s.setPassword(admin, newPassword)
}

func (s *AdminService) setPassword(admin *models.Admin, newPassword string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(newPassword)); err == nil {
		return apperr.NewConflict("new password must differ from the current password", nil)
	}
	if admin.PreviousPassword != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(*admin.PreviousPassword), []byte(newPassword)); err == nil {
			return apperr.NewConflict("new password must differ from the previous password", nil)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperr.NewInternal("failed to hash password", err)
	}
	if err := s.repo.UpdatePassword(admin.ID, string(hash)); err != nil {
		return apperr.FromStorage(err, "admin")
	}
	s.log.WithField("admin_id", admin.ID).Info("password changed")
	return nil
}
