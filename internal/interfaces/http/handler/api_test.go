package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cashierapp "github.com/erp/retail/internal/application/cashier"
	catalogapp "github.com/erp/retail/internal/application/catalog"
	financeapp "github.com/erp/retail/internal/application/finance"
	inventoryapp "github.com/erp/retail/internal/application/inventory"
	partnerapp "github.com/erp/retail/internal/application/partner"
	reportapp "github.com/erp/retail/internal/application/report"
	servicedeskapp "github.com/erp/retail/internal/application/servicedesk"
	tradeapp "github.com/erp/retail/internal/application/trade"
	"github.com/erp/retail/internal/domain/shared"
	"github.com/erp/retail/internal/infrastructure/auth"
	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/persistence"
	"github.com/erp/retail/internal/interfaces/http/handler"
	"github.com/erp/retail/internal/interfaces/http/middleware"
	"github.com/erp/retail/internal/interfaces/http/router"
	"github.com/erp/retail/tests/testutil"
)

type apiFixture struct {
	engine *gin.Engine
	db     *gorm.DB
	token  string
	actor  shared.Actor
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Fields  []struct {
			Field string `json:"field"`
		} `json:"fields"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db)
	ledger := inventoryapp.NewLedger(nil, log)
	opts := tradeapp.DefaultOptions()

	engine, err := router.NewEngine(router.EngineConfig{
		Mode: gin.TestMode,
		CORS: middleware.DefaultCORSConfig(),
	}, log, nil)
	require.NoError(t, err)

	jwt := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "retail-test"})
	categories := financeapp.NewDRECategoryService(persistence.NewGormDRECategoryRepository(db))
	handlers := router.Handlers{
		Catalog: handler.NewCatalogHandler(
			catalogapp.NewProductService(persistence.NewGormProductRepository(db), log),
			catalogapp.NewServiceItemService(persistence.NewGormServiceItemRepository(db)),
		),
		Partner: handler.NewPartnerHandler(
			partnerapp.NewCustomerService(persistence.NewGormCustomerRepository(db), opts.WalkInName),
			partnerapp.NewSupplierService(persistence.NewGormSupplierRepository(db)),
		),
		Inventory: handler.NewInventoryHandler(
			inventoryapp.NewStockService(scope, ledger,
				persistence.NewGormProductRepository(db),
				persistence.NewGormMovementRepository(db),
				persistence.NewGormBatchRepository(db), log),
			inventoryapp.NewCountSessionService(scope, ledger, persistence.NewGormCountSessionRepository(db), log),
		),
		Drawer: handler.NewDrawerHandler(
			cashierapp.NewDrawerService(scope, persistence.NewGormDrawerRepository(db), cashierapp.NopLocker{}, log),
		),
		Sale: handler.NewSaleHandler(
			tradeapp.NewSaleService(scope, ledger, persistence.NewGormSaleRepository(db), opts, log),
			tradeapp.NewCheckoutService(scope, ledger, opts, log),
		),
		Purchase: handler.NewPurchaseHandler(
			tradeapp.NewPurchaseService(scope, ledger, persistence.NewGormPurchaseOrderRepository(db), opts, log),
		),
		ServiceOrder: handler.NewServiceOrderHandler(
			servicedeskapp.NewServiceOrderService(scope, ledger, persistence.NewGormServiceOrderRepository(db),
				servicedeskapp.Options{WalkInName: opts.WalkInName, WarrantyDays: 90}, log),
		),
		Finance: handler.NewFinanceHandler(
			financeapp.NewReceivableService(scope, persistence.NewGormReceivableRepository(db), nil, log),
			financeapp.NewPayableService(scope, persistence.NewGormPayableRepository(db), log),
			financeapp.NewPaymentMethodService(persistence.NewGormPaymentMethodRepository(db), log),
			categories,
		),
		Report: handler.NewReportHandler(reportapp.NewDREService(scope, log)),
	}
	router.NewRouter(engine, router.WithMiddleware(middleware.Auth(jwt))).
		Register(handlers.Groups()...).
		Setup()

	actor := testutil.NewActor("Caixa")
	token, err := jwt.Issue(actor, time.Hour)
	require.NoError(t, err)

	return &apiFixture{engine: engine, db: db, token: token, actor: actor}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (f *apiFixture) product(t *testing.T, code, price, stock string) uuid.UUID {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/catalog/products", gin.H{
		"code": code, "name": "Produto " + code, "unit": "UN",
		"cost_price": "12.00", "sale_price": price,
	})
	require.Equal(t, http.StatusCreated, status)
	product := decode[catalogapp.ProductResponse](t, env)

	status, _ = f.do(t, http.MethodPost, "/inventory/movements", gin.H{
		"product_id": product.ID, "kind": "entry", "quantity": stock,
		"unit_value": "12.00", "document_number": "NF-1",
	})
	require.Equal(t, http.StatusCreated, status)
	return product.ID
}

func (f *apiFixture) openDrawer(t *testing.T, float string) uuid.UUID {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/cashier/drawers", gin.H{
		"register_number": 1, "opening_float": float,
	})
	require.Equal(t, http.StatusCreated, status)
	return decode[cashierapp.SessionResponse](t, env).ID
}

func TestAPI_CheckoutEndToEnd(t *testing.T) {
	f := newAPIFixture(t)
	productID := f.product(t, "CABO-USB", "30.00", "10")
	drawerID := f.openDrawer(t, "100")

	status, env := f.do(t, http.MethodPost, "/trade/checkout", gin.H{
		"drawer_session_id": drawerID,
		"lines":             []gin.H{{"product_id": productID, "quantity": "2"}},
		"tendered":          "100",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	receipt := decode[tradeapp.Receipt](t, env)
	assert.Equal(t, "SALE000001", receipt.Number)
	assert.True(t, decimal.RequireFromString("60").Equal(receipt.Total))
	assert.True(t, decimal.RequireFromString("40").Equal(receipt.Change))

	status, env = f.do(t, http.MethodGet, "/inventory/stock/"+productID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	stock := decode[inventoryapp.StockResponse](t, env)
	assert.True(t, decimal.RequireFromString("8").Equal(stock.OnHandQuantity))

	status, env = f.do(t, http.MethodGet, "/cashier/drawers/current", nil)
	require.Equal(t, http.StatusOK, status)
	session := decode[cashierapp.SessionResponse](t, env)
	assert.Equal(t, 1, session.SalesCount)
	assert.True(t, decimal.RequireFromString("160").Equal(session.ExpectedCash))

	status, env = f.do(t, http.MethodGet, "/trade/sales/number/SALE000001", nil)
	require.Equal(t, http.StatusOK, status)
	sale := decode[tradeapp.SaleResponse](t, env)
	assert.Equal(t, receipt.SaleID, sale.ID)
	assert.Equal(t, "completed", sale.Status)

	status, env = f.do(t, http.MethodGet, "/trade/sales?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
}

func TestAPI_CheckoutInsufficientStock(t *testing.T) {
	f := newAPIFixture(t)
	productID := f.product(t, "FONE", "50.00", "1")
	drawerID := f.openDrawer(t, "0")

	status, env := f.do(t, http.MethodPost, "/trade/checkout", gin.H{
		"drawer_session_id": drawerID,
		"lines":             []gin.H{{"product_id": productID, "quantity": "3"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, shared.CodeInsufficientStock, env.Error.Code)

	status, env = f.do(t, http.MethodGet, "/inventory/stock/"+productID.String(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decimal.RequireFromString("1").Equal(decode[inventoryapp.StockResponse](t, env).OnHandQuantity))
}

func TestAPI_DrawerAlreadyOpen(t *testing.T) {
	f := newAPIFixture(t)
	f.openDrawer(t, "50")

	status, env := f.do(t, http.MethodPost, "/cashier/drawers", gin.H{"register_number": 2, "opening_float": "0"})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, shared.CodeDrawerAlreadyOpen, env.Error.Code)
}

func TestAPI_Validation(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("missing required fields", func(t *testing.T) {
		status, env := f.do(t, http.MethodPost, "/catalog/products", gin.H{"name": "Sem código"})
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		require.NotEmpty(t, env.Error.Fields)
		assert.Equal(t, "code", env.Error.Fields[0].Field)
	})

	t.Run("malformed id", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/catalog/products/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
	})

	t.Run("unknown product", func(t *testing.T) {
		status, env := f.do(t, http.MethodGet, "/catalog/products/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, shared.CodeNotFound, env.Error.Code)
	})

	t.Run("report year out of range", func(t *testing.T) {
		status, _ := f.do(t, http.MethodGet, "/reports/dre?year=1800", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestAPI_Unauthenticated(t *testing.T) {
	f := newAPIFixture(t)

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAPI_TenantIsolation(t *testing.T) {
	f := newAPIFixture(t)
	productID := f.product(t, "MOUSE", "80.00", "3")

	other := testutil.NewActor("Outra loja")
	token, err := auth.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "retail-test"}).Issue(other, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/products/"+productID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_MonthlyDRE(t *testing.T) {
	f := newAPIFixture(t)
	productID := f.product(t, "TECLADO", "30.00", "5")
	drawerID := f.openDrawer(t, "0")

	status, _ := f.do(t, http.MethodPost, "/trade/checkout", gin.H{
		"drawer_session_id": drawerID,
		"lines":             []gin.H{{"product_id": productID, "quantity": "2"}},
	})
	require.Equal(t, http.StatusCreated, status)

	now := time.Now()
	status, env := f.do(t, http.MethodGet, "/reports/dre?year="+now.Format("2006")+"&month="+now.Format("1"), nil)
	require.Equal(t, http.StatusOK, status)

	var stmt struct {
		SalesRevenue decimal.Decimal `json:"sales_revenue"`
		CostOfGoods  decimal.Decimal `json:"cost_of_goods"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stmt))
	assert.True(t, decimal.RequireFromString("60").Equal(stmt.SalesRevenue), stmt.SalesRevenue.String())

	status, env = f.do(t, http.MethodGet, "/reports/dre?year="+now.Format("2006"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, env.Data)

	t.Run("day range spanning a month boundary", func(t *testing.T) {
		from := now.AddDate(0, -1, 0).Format(time.DateOnly)
		to := now.AddDate(0, 0, 1).Format(time.DateOnly)
		status, env := f.do(t, http.MethodGet, "/reports/dre?from="+from+"&to="+to, nil)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(env.Data, &stmt))
		assert.True(t, decimal.RequireFromString("60").Equal(stmt.SalesRevenue), stmt.SalesRevenue.String())

		before := now.AddDate(0, 0, -1).Format(time.DateOnly)
		status, env = f.do(t, http.MethodGet, "/reports/dre?from="+from+"&to="+before, nil)
		require.Equal(t, http.StatusOK, status)
		require.NoError(t, json.Unmarshal(env.Data, &stmt))
		assert.True(t, stmt.SalesRevenue.IsZero(), stmt.SalesRevenue.String())
	})
}

func TestAPI_PaymentMethodFeePreview(t *testing.T) {
	f := newAPIFixture(t)

	status, env := f.do(t, http.MethodPost, "/finance/payment-methods", gin.H{
		"name": "Crédito", "type": "credit_card",
		"base_percent": "3", "allows_installments": true, "max_installments": 3, "tier3_percent": "4.5",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var method struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &method))

	status, env = f.do(t, http.MethodGet, "/finance/payment-methods/"+method.ID.String()+"/fee?amount=60&installments=3", nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	var fee struct {
		Fee decimal.Decimal `json:"fee"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &fee))
	assert.True(t, decimal.RequireFromString("2.70").Equal(fee.Fee), fee.Fee.String())
}
