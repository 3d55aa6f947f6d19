package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	r := Error("EMAIL_TAKEN", "Email already registered")

	assert.False(t, r.Success)
	require.NotNil(t, r.Error)
	assert.Equal(t, "EMAIL_TAKEN", r.Error.Code)
	assert.Equal(t, "Email already registered", r.Error.Message)
}

func TestAbortInternal_HidesCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	AbortInternal(c, errors.New("pq: password authentication failed for user postgres"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
	assert.Len(t, c.Errors, 1)
	assert.NotContains(t, w.Body.String(), "postgres")

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}
