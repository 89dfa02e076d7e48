package catalog

import (
	"context"
	"testing"

	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestProductService(t *testing.T) *ProductService {
	t.Helper()
	return NewProductService(persistence.NewGormProductRepository(testutil.NewSQLiteDB(t)), nil)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newTestProductService(t)
	tenantID := uuid.New()

	created, err := svc.Create(ctx, tenantID, CreateProductRequest{
		Code:      "cab-01",
		Name:      "Cabo USB",
		Barcode:   "7890000000017",
		CostPrice: price("6"),
		SalePrice: price("10"),
		MinStock:  price("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "CAB-01", created.Code)
	assert.Equal(t, "UN", created.Unit)
	assert.Equal(t, "active", created.Status)
	assert.True(t, created.OnHandQuantity.IsZero())
	assert.True(t, decimal.NewFromInt(40).Equal(created.ProfitMargin))

	t.Run("duplicate code", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "CAB-01", Name: "Outro"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("duplicate barcode", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "CAB-02", Name: "Outro", Barcode: "7890000000017"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("same code in another tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), CreateProductRequest{Code: "CAB-01", Name: "Cabo"})
		assert.NoError(t, err)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "X", Name: "X", SalePrice: price("-1")})
		assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
	})
}

func TestProductService_LookupAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestProductService(t)
	tenantID := uuid.New()

	created, err := svc.Create(ctx, tenantID, CreateProductRequest{Code: "MOUSE", Name: "Mouse", Barcode: "123456", SalePrice: price("30")})
	require.NoError(t, err)

	byCode, err := svc.GetByCode(ctx, tenantID, " mouse ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	byBarcode, err := svc.GetByCode(ctx, tenantID, "123456")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byBarcode.ID)

	_, err = svc.GetByCode(ctx, tenantID, "nada")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	name := "Mouse sem fio"
	updated, err := svc.Update(ctx, tenantID, created.ID, UpdateProductRequest{Name: &name, CostPrice: price("12")})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.True(t, decimal.NewFromInt(12).Equal(updated.CostPrice))
	assert.True(t, decimal.NewFromInt(30).Equal(updated.SalePrice), "unspecified price is kept")

	deactivated, err := svc.Deactivate(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", deactivated.Status)

	list, err := svc.List(ctx, tenantID, shared.Filter{Search: "sem fio"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestServiceItemService(t *testing.T) {
	ctx := context.Background()
	svc := NewServiceItemService(persistence.NewGormServiceItemRepository(testutil.NewSQLiteDB(t)))
	tenantID := uuid.New()

	created, err := svc.Create(ctx, tenantID, CreateServiceItemRequest{Code: "inst", Name: "Instalação", Price: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.Equal(t, "INST", created.Code)
	assert.True(t, created.Active)

	updated, err := svc.Update(ctx, tenantID, created.ID, UpdateServiceItemRequest{Name: "Instalação completa", Price: decimal.NewFromInt(80)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(updated.Price))

	require.NoError(t, svc.Deactivate(ctx, tenantID, created.ID))
	got, err := svc.Get(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = svc.Get(ctx, uuid.New(), created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.Create(ctx, tenantID, CreateServiceItemRequest{Code: "NEG", Name: "Negativo", Price: decimal.NewFromInt(-1)})
	assert.True(t, shared.IsDomainError(err, shared.CodeValidation))
}
