package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/taskbuddy-backend/internal/pkg/apperror"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		code    string
	}{
		{"не найдено", apperror.ErrTaskNotFound, http.StatusNotFound, "task does not exist", "NOT_FOUND"},
		{"чужая задача", apperror.ErrSelfAccept, http.StatusForbidden, "you cannot accept your own task", "FORBIDDEN"},
		{"неверный статус", apperror.ErrTaskNotCompleted, http.StatusConflict, "task not completed", "CONFLICT"},
		{"конфликт транзакции", apperror.ErrTxAborted, http.StatusConflict, apperror.ErrTxAborted.Message, "TX_ABORTED"},
		{"обёрнутая ошибка", errors.Join(errors.New("ctx"), apperror.ErrNotTaskBuddy), http.StatusForbidden, "only the assigned buddy can do this", "FORBIDDEN"},
		{"ошибка базы", apperror.Wrap(errors.New("pq: boom"), apperror.ErrCodeDatabaseError, "db"), http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR"},
		{"неизвестная ошибка", errors.New("sql: no rows"), http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := Describe(tt.err)
			assert.Equal(t, tt.status, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestError_WritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { Error(c, apperror.ErrTaskNotOpen) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "task is not open for acceptance", body["error"])
}

func TestPaginated_HasMore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { Paginated(c, []int{1, 2}, 5, 2, 0) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	var body PaginatedResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 5, body.Pagination.Total)
	assert.True(t, body.Pagination.HasMore)
}
