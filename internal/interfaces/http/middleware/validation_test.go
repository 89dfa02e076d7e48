package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/retail/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountRequest struct {
	Name     string           `json:"name" binding:"required,max=5"`
	Quantity decimal.Decimal  `json:"quantity" binding:"decimal_gt0"`
	Discount *decimal.Decimal `json:"discount" binding:"omitempty,decimal_gte0"`
}

func bindAmount(t *testing.T, body string) []dto.ValidationDetail {
	t.Helper()
	SetupValidator()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req amountRequest
	err := c.ShouldBindJSON(&req)
	if err == nil {
		return nil
	}
	details := ValidationDetails(err)
	require.NotNil(t, details, "binding error should be a validation error: %v", err)
	return details
}

func TestSetupValidator_DecimalTags(t *testing.T) {
	assert.Empty(t, bindAmount(t, `{"name":"ok","quantity":"2.5","discount":"0"}`))
	assert.Empty(t, bindAmount(t, `{"name":"ok","quantity":1}`))

	details := bindAmount(t, `{"name":"ok","quantity":"0"}`)
	require.Len(t, details, 1)
	assert.Equal(t, "quantity", details[0].Field)
	assert.Equal(t, "Must be greater than zero", details[0].Message)

	details = bindAmount(t, `{"name":"ok","quantity":"1","discount":"-0.01"}`)
	require.Len(t, details, 1)
	assert.Equal(t, "discount", details[0].Field)
	assert.Equal(t, "Must be zero or greater", details[0].Message)
}

func TestSetupValidator_FieldNamesFromJSONTags(t *testing.T) {
	details := bindAmount(t, `{"name":"too long","quantity":"1"}`)
	require.Len(t, details, 1)
	assert.Equal(t, "name", details[0].Field)
	assert.Equal(t, "Must be at most 5 characters", details[0].Message)
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}
