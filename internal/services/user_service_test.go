package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(&models.CreateUserRequest{
		Email: "user@example.com", Name: "User", Password: "password-one",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "password-one", user.Password)

	_, err = env.users.Create(&models.CreateUserRequest{
		Email: "User@Example.com", Name: "Other", Password: "password-one",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}

func TestUserUpdatePartial(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Create(&models.CreateUserRequest{
		Email: "user@example.com", Name: "User", Password: "password-one",
	})
	require.NoError(t, err)

	phone := "555-0101"
	updated, err := env.users.Update(user.ID, &models.UpdateUserRequest{PhoneNo: &phone})
	require.NoError(t, err)
	require.NotNil(t, updated.PhoneNo)
	assert.Equal(t, "555-0101", *updated.PhoneNo)
	assert.Equal(t, "user@example.com", updated.Email, "untouched fields survive a partial update")
}

func TestUserBulkDeleteZeroEffective(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.BulkDelete([]uuid.UUID{uuid.New()})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestUserGetNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.Get(uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestBuildUserWorkbook(t *testing.T) {
	env := newTestEnv(t)

	phone := "555-0101"
	_, err := env.users.Create(&models.CreateUserRequest{
		Email: "user@example.com", Name: "User", PhoneNo: &phone, Password: "password-one",
	})
	require.NoError(t, err)

	users, err := env.users.ListAll()
	require.NoError(t, err)

	workbook, err := BuildUserWorkbook(users)
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Users")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Email", "Name", "Phone No", "Status", "Created At"}, rows[0])
	assert.Equal(t, "user@example.com", rows[1][1])
	assert.Equal(t, "555-0101", rows[1][3])
}
