package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

func TestBulkDeleteSkipsSystemRecords(t *testing.T) {
	db := newTestDB(t)
	system := seedAdmin(t, db, "root@example.com", "Root", true)
	regular := seedAdmin(t, db, "ops@example.com", "Ops", false)

	count, err := BulkDelete[models.Admin](db, AdminSchema, []uuid.UUID{system.ID, regular.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var remaining []models.Admin
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, system.ID, remaining[0].ID)
}

func TestBulkDeleteUnprotectedEntity(t *testing.T) {
	db := newTestDB(t)
	a := seedUser(t, db, "a@example.com", "A", 1)
	b := seedUser(t, db, "b@example.com", "B", 1)

	count, err := BulkDelete[models.User](db, UserSchema, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBulkDeleteEmptyIDs(t *testing.T) {
	db := newTestDB(t)
	_, err := BulkDelete[models.User](db, UserSchema, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func TestBulkUpdateFieldAllowlist(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "a@example.com", "A", 1)

	// email is not on the mutable allowlist.
	_, err := BulkUpdateField[models.User](db, UserSchema, []uuid.UUID{user.ID}, models.FieldUpdate{
		Name:  "email",
		Value: "evil@example.com",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeValidation))

	count, err := BulkUpdateField[models.User](db, UserSchema, []uuid.UUID{user.ID}, models.FieldUpdate{
		Name:  "status",
		Value: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", user.ID).Error)
	assert.Equal(t, 0, got.Status)
}

func TestBulkUpdateFieldSkipsSystemRecords(t *testing.T) {
	db := newTestDB(t)
	system := seedAdmin(t, db, "root@example.com", "Root", true)
	regular := seedAdmin(t, db, "ops@example.com", "Ops", false)

	count, err := BulkUpdateField[models.Admin](db, AdminSchema, []uuid.UUID{system.ID, regular.ID}, models.FieldUpdate{
		Name:  "status",
		Value: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var got models.Admin
	require.NoError(t, db.First(&got, "id = ?", system.ID).Error)
	assert.Equal(t, 1, got.Status)
}

func TestBulkUpdateFieldNoMatchingRows(t *testing.T) {
	db := newTestDB(t)
	count, err := BulkUpdateField[models.User](db, UserSchema, []uuid.UUID{uuid.New()}, models.FieldUpdate{
		Name:  "status",
		Value: 0,
	})
	require.NoError(t, err)
	assert.Zero(t, count)
}
