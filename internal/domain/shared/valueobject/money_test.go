package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), BRL)
		require.NoError(t, err)
		assert.Equal(t, BRL, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", BRL)
		require.NoError(t, err)
		assert.Equal(t, "123.45 BRL", m.String())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", BRL)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyBRL(decimal.RequireFromString("10.10"))
	b := NewMoneyBRL(decimal.RequireFromString("0.20"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "10.30", sum.Amount().StringFixed(2))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "9.90", diff.Amount().StringFixed(2))

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)

	assert.True(t, a.Multiply(decimal.NewFromInt(3)).Equals(NewMoneyBRL(decimal.RequireFromString("30.30"))))
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewMoneyBRL(decimal.NewFromInt(60)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"60.00","currency":"BRL"}`, string(data))
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.345", "2.35"},
		{"2.344", "2.34"},
		{"-2.345", "-2.35"},
		{"10", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, RoundMoney(decimal.RequireFromString(tt.in)).Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.RequireFromString("99.90"), decimal.RequireFromString("2.39"))
	assert.Equal(t, "2.39", got.StringFixed(2))
}

func TestRatio(t *testing.T) {
	assert.True(t, Ratio(decimal.NewFromInt(4500), decimal.NewFromInt(10000)).Equal(decimal.NewFromInt(45)))
	assert.True(t, Ratio(decimal.NewFromInt(10), decimal.Zero).IsZero())
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, ValidateQuantity("quantity", decimal.RequireFromString("1.125"), true))
	assert.Error(t, ValidateQuantity("quantity", decimal.RequireFromString("1.1255"), true))
	assert.Error(t, ValidateQuantity("quantity", decimal.Zero, true))
	assert.NoError(t, ValidateQuantity("quantity", decimal.Zero, false))
	assert.Error(t, ValidateQuantity("quantity", decimal.NewFromInt(-1), false))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount("price", decimal.RequireFromString("30.00")))
	assert.Error(t, ValidateAmount("price", decimal.RequireFromString("30.001")))
	assert.Error(t, ValidateAmount("price", decimal.RequireFromString("-1")))
}
