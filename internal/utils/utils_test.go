package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecochain/token-catalog/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func contextFor(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestParsePaginationParams(t *testing.T) {
	cases := map[string]PaginationParams{
		"/tokens":                  {Page: 1, Limit: 15},
		"/tokens?page=3&limit=20":  {Page: 3, Limit: 20},
		"/tokens?page=-1&limit=0":  {Page: 1, Limit: 15},
		"/tokens?limit=500":        {Page: 1, Limit: 100},
		"/tokens?page=abc&limit=x": {Page: 1, Limit: 15},
	}
	for target, want := range cases {
		c, _ := contextFor(target)
		assert.Equal(t, want, ParsePaginationParams(c, DefaultLimit, MaxLimit), target)
	}
}

func TestSendError_MapsKinds(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.Validation(map[string]string{"name": "Name is required"}), http.StatusBadRequest, "Name is required"},
		{apperr.NotFound("Token"), http.StatusNotFound, "Token not found"},
		{apperr.Conflict("Token symbol already exists"), http.StatusConflict, "Token symbol already exists"},
		{apperr.Transport("settlement failed, please try again", errors.New("dial tcp")), http.StatusBadGateway, "settlement failed, please try again"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		c, w := contextFor("/")
		SendError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var env Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Success)
		assert.Equal(t, tc.message, env.Message)
	}
}

func TestSendPaginatedResponse(t *testing.T) {
	c, w := contextFor("/")

	SendPaginatedResponse(c, http.StatusOK, []string{"a"}, 1, 1, 1)

	assert.JSONEq(t, `{"success":true,"data":["a"],"count":1,"page":1,"totalPages":1}`, w.Body.String())
}
