package partner

import (
	"testing"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid", func(t *testing.T) {
		c, err := NewCustomer(tenantID, " c001 ", "Maria Souza", CustomerTypeIndividual)
		require.NoError(t, err)
		assert.Equal(t, "C001", c.Code)
		assert.Equal(t, tenantID, c.TenantID)
		assert.True(t, c.Active)
		assert.False(t, c.WalkIn)
	})

	tests := []struct {
		name string
		code string
		cn   string
		ct   CustomerType
	}{
		{"empty code", "", "Maria", CustomerTypeIndividual},
		{"empty name", "C1", "  ", CustomerTypeIndividual},
		{"bad type", "C1", "Maria", CustomerType("vip")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCustomer(tenantID, tt.code, tt.cn, tt.ct)
			assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
		})
	}
}

func TestNewWalkInCustomer(t *testing.T) {
	c := NewWalkInCustomer(uuid.New(), "")
	assert.True(t, c.WalkIn)
	assert.Equal(t, WalkInCode, c.Code)
	assert.Equal(t, DefaultWalkInName, c.Name)
	assert.True(t, shared.IsDomainError(c.Deactivate(), shared.CodeValidation))
	assert.True(t, c.Active)

	named := NewWalkInCustomer(uuid.New(), "Balcão")
	assert.Equal(t, "Balcão", named.Name)
}

func TestCustomer_SetDocument(t *testing.T) {
	c, err := NewCustomer(uuid.New(), "C2", "Oficina LTDA", CustomerTypeIndividual)
	require.NoError(t, err)

	require.NoError(t, c.SetDocument("123.456.789-01"))
	assert.Equal(t, "12345678901", c.Document)
	assert.Equal(t, CustomerTypeIndividual, c.Type)

	require.NoError(t, c.SetDocument("12.345.678/0001-90"))
	assert.Equal(t, "12345678000190", c.Document)
	assert.Equal(t, CustomerTypeOrganization, c.Type)

	assert.True(t, shared.IsDomainError(c.SetDocument("123"), shared.CodeValidation))
}

func TestNewSupplier(t *testing.T) {
	s, err := NewSupplier(uuid.New(), "f01", "Distribuidora")
	require.NoError(t, err)
	assert.Equal(t, "F01", s.Code)
	require.NoError(t, s.SetLeadTime(5))
	assert.Equal(t, 5, s.LeadTimeDays)
	assert.Error(t, s.SetLeadTime(-1))
}
