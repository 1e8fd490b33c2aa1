package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/apperr"
	"admin-service/internal/models"
)

func TestFindAllPaginateDefaults(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		seedUser(t, db, fmt.Sprintf("user%02d@example.com", i), fmt.Sprintf("User %02d", i), 1)
	}

	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Len(t, page.Rows, 10)
}

func TestFindAllPaginatePagesDoNotOverlap(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		seedUser(t, db, fmt.Sprintf("user%02d@example.com", i), fmt.Sprintf("User %02d", i), 1)
	}

	seen := map[string]bool{}
	for pageNumber := 0; pageNumber < 3; pageNumber++ {
		page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{
			PageNumber: pageNumber,
			PerPage:    10,
			Sort:       "email",
		})
		require.NoError(t, err)
		for _, row := range page.Rows {
			assert.False(t, seen[row.Email], "row %s appeared on more than one page", row.Email)
			seen[row.Email] = true
		}
	}
	assert.Len(t, seen, 25)
}

func TestFindAllPaginateLastPagePartial(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 25; i++ {
		seedUser(t, db, fmt.Sprintf("user%02d@example.com", i), fmt.Sprintf("User %02d", i), 1)
	}

	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{PageNumber: 2, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 5)
	assert.Equal(t, int64(25), page.Total)

	// Past the end: empty rows, same total.
	page, err = FindAllPaginate[models.User](db, UserSchema, models.ListQuery{PageNumber: 10, PerPage: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, int64(25), page.Total)
}

func TestFindAllPaginateRejectsBadInput(t *testing.T) {
	db := newTestDB(t)

	cases := []struct {
		name  string
		query models.ListQuery
	}{
		{"negative pageNumber", models.ListQuery{PageNumber: -1}},
		{"negative perPage", models.ListQuery{PerPage: -5}},
		{"unknown sort field", models.ListQuery{Sort: "password"}},
		{"bad order", models.ListQuery{Order: "SIDEWAYS"}},
		{"unknown filter field", models.ListQuery{Filters: map[string]string{"password": "x"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FindAllPaginate[models.User](db, UserSchema, tc.query)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
		})
	}
}

func TestFindAllPaginateFilters(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "active@example.com", "Active", 1)
	seedUser(t, db, "disabled@example.com", "Disabled", 0)

	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{
		Filters: map[string]string{"status": "1"},
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "active@example.com", page.Rows[0].Email)
	assert.Equal(t, int64(1), page.Total)
}

func TestFindAllPaginateSearch(t *testing.T) {
	db := newTestDB(t)
	phone := "555-0101"
	alice := models.User{Email: "alice@example.com", Name: "Alice", PhoneNo: &phone, Password: "x", Status: 1}
	require.NoError(t, db.Create(&alice).Error)
	seedUser(t, db, "bob@example.com", "Bob", 1)

	// Case-insensitive, substring.
	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{Q: "ALIC"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "alice@example.com", page.Rows[0].Email)

	// Matches across searchable fields.
	page, err = FindAllPaginate[models.User](db, UserSchema, models.ListQuery{Q: "555"})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 1)

	// ignoreGlobal removes a field from the search.
	page, err = FindAllPaginate[models.User](db, UserSchema, models.ListQuery{
		Q:            "555",
		IgnoreGlobal: []string{"phoneNo"},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
}

func TestFindAllPaginateSearchAndFilterCombine(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice@example.com", "Alice", 1)
	seedUser(t, db, "alicia@example.com", "Alicia", 0)
	seedUser(t, db, "bob@example.com", "Bob", 1)

	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{
		Q:       "ali",
		Filters: map[string]string{"status": "1"},
	})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "alice@example.com", page.Rows[0].Email)
}

func TestFindAllPaginateSort(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "c@example.com", "Carol", 1)
	seedUser(t, db, "a@example.com", "Alice", 1)
	seedUser(t, db, "b@example.com", "Bob", 1)

	page, err := FindAllPaginate[models.User](db, UserSchema, models.ListQuery{Sort: "email", Order: "DESC"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 3)
	assert.Equal(t, "c@example.com", page.Rows[0].Email)
	assert.Equal(t, "a@example.com", page.Rows[2].Email)

	// Lowercase order is accepted.
	page, err = FindAllPaginate[models.User](db, UserSchema, models.ListQuery{Sort: "email", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", page.Rows[0].Email)
}
