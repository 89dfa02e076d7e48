package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{shared.CodeInsufficientStock, http.StatusUnprocessableEntity},
		{shared.CodeInvalidInstallments, http.StatusUnprocessableEntity},
		{shared.CodeDrawerAlreadyOpen, http.StatusConflict},
		{shared.CodeAlreadyClosed, http.StatusConflict},
		{shared.CodeInvalidStatusTransition, http.StatusUnprocessableEntity},
		{shared.CodeDuplicateLineItemType, http.StatusBadRequest},
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeDrawerNotOpen, http.StatusConflict},
		{shared.CodeForbidden, http.StatusForbidden},
		{shared.CodeOptimisticLock, http.StatusConflict},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 0, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestErrorEnvelope(t *testing.T) {
	body, err := json.Marshal(NewErrorResponseWithRequestID(shared.CodeNotFound, "Sale not found", "req-1"))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"success":false,"error":{"code":"NOT_FOUND","message":"Sale not found","request_id":"req-1"}}`,
		string(body))
}
