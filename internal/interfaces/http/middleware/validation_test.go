package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcrm/backend/internal/infrastructure/logger"
	"github.com/retailcrm/backend/internal/interfaces/http/dto"
)

type intervalsInput struct {
	Product *int     `json:"product_minutes" binding:"required,gte=0"`
	Stock   *int     `json:"stock_minutes" binding:"required,gt=0"`
	Tags    []string `json:"tags" binding:"omitempty,max=2"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		c.Set(logger.GinRequestIDKey, "req-42")
		var in intervalsInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("field errors use json names", func(t *testing.T) {
		w := postJSON(router, `{"product_minutes": -1, "stock_minutes": 0, "tags": ["a","b","c"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "Must be greater than or equal to 0", messages["product_minutes"])
		assert.Equal(t, "Must be greater than 0", messages["stock_minutes"])
		assert.Equal(t, "Must contain at most 2 items", messages["tags"])
	})

	t.Run("missing pointer fields are required", func(t *testing.T) {
		w := postJSON(router, `{}`)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "This field is required", resp.Error.Details[0].Message)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := postJSON(router, `{"product_minutes":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("valid input passes", func(t *testing.T) {
		w := postJSON(router, `{"product_minutes": 0, "stock_minutes": 15}`)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
