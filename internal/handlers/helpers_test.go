package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-service/internal/apperr"
	"admin-service/internal/middleware"
	"admin-service/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func listQueryFor(t *testing.T, rawQuery string) models.ListQuery {
	t.Helper()

	var got models.ListQuery
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		q, err := parseListQuery(c, 10, 100)
		require.NoError(t, err)
		got = q
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test?"+rawQuery, nil)
	router.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestParseListQuery(t *testing.T) {
	q := listQueryFor(t, "pageNumber=2&perPage=25&sort=email&order=DESC&q=alice&ignoreGlobal=phoneNo,email&status=1")

	assert.Equal(t, 2, q.PageNumber)
	assert.Equal(t, 25, q.PerPage)
	assert.Equal(t, "email", q.Sort)
	assert.Equal(t, "DESC", q.Order)
	assert.Equal(t, "alice", q.Q)
	assert.Equal(t, []string{"phoneNo", "email"}, q.IgnoreGlobal)
	assert.Equal(t, map[string]string{"status": "1"}, q.Filters)
}

func TestParseListQueryDefaults(t *testing.T) {
	q := listQueryFor(t, "")

	assert.Zero(t, q.PageNumber)
	assert.Equal(t, 10, q.PerPage)
	assert.Empty(t, q.Filters)
}

func TestParseListQueryCapsPerPage(t *testing.T) {
	q := listQueryFor(t, "perPage=10000")
	assert.Equal(t, 100, q.PerPage)
}

func TestParseListQueryRejectsBadInput(t *testing.T) {
	cases := []string{"pageNumber=abc", "perPage=abc", "perPage=0", "perPage=-5"}
	for _, rawQuery := range cases {
		t.Run(rawQuery, func(t *testing.T) {
			router := gin.New()
			var parseErr error
			router.GET("/test", func(c *gin.Context) {
				_, parseErr = parseListQuery(c, 10, 100)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test?"+rawQuery, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)

			require.Error(t, parseErr)
			assert.True(t, apperr.Is(parseErr, apperr.CodeValidation))
		})
	}
}

func TestErrorHandlerEnvelope(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	router := gin.New()
	router.Use(middleware.ErrorHandler(log))
	router.GET("/missing", func(c *gin.Context) {
		fail(c, apperr.NewNotFound("user"))
	})
	router.GET("/boom", func(c *gin.Context) {
		fail(c, assert.AnError)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body.Message)
	assert.Equal(t, http.StatusNotFound, body.Status)

	// Untyped errors collapse to a generic 500 without leaking the cause.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Message, assert.AnError.Error())
}
