package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plusiam/sisu/internal/service"
)

func TestWorkloadHandlerCalculate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(service.NewWorkloadService(nil, nil))

	body := `{"basic_teaching":20,"admin_work":4}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/workload/calculate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Calculate(c)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			TotalHours int `json:"total_hours"`
			Compliance struct {
				Status  string `json:"status"`
				Message string `json:"message"`
			} `json:"compliance"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 24, envelope.Data.TotalHours)
	assert.Equal(t, "warning", envelope.Data.Compliance.Status)
	assert.Equal(t, "시수가 다소 많습니다", envelope.Data.Compliance.Message)
}

func TestWorkloadHandlerRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(service.NewWorkloadService(nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/workload/calculate", strings.NewReader("{"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkloadHandlerRejectsOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewWorkloadHandler(service.NewWorkloadService(nil, nil))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/workload/calculate", strings.NewReader(`{"basic_teaching":41}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Calculate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
