package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rajagopika181204/website-backend/middlewares"
	"github.com/rajagopika181204/website-backend/models"
	"github.com/rajagopika181204/website-backend/services"
	"github.com/rajagopika181204/website-backend/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "controller-test-secret"

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	auth   *services.AuthGate
	images *storage.LocalStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderItem{}, &models.UserAddress{}, &models.CartItem{}))

	log := zap.NewNop()
	ledger := services.NewInventoryLedger(log)
	recorder := services.NewOrderRecorder(db, log)
	addresses := services.NewAddressBook(db, log)
	catalog := services.NewCatalog(db, nil, 0, log)
	auth := services.NewAuthGate(db, services.AuthConfig{Secret: testSecret}, log)
	checkout := services.NewCheckout(db, ledger, recorder, addresses, nil, log)
	images := storage.NewLocalStore(t.TempDir())

	engine := gin.New()
	engine.Use(middlewares.RequestLogger(log))
	requireAuth := middlewares.RequireAuth(auth)

	authController := NewAuthController(auth)
	engine.POST("/signup", authController.Signup)
	engine.POST("/login", authController.Login)

	products := NewProductController(catalog, ledger, images)
	engine.GET("/products", products.GetProducts)
	engine.GET("/products/:id", products.GetProduct)
	admin := engine.Group("/products", requireAuth, middlewares.RequireAdmin())
	admin.POST("", products.CreateProduct)
	admin.PATCH("/:id/price", products.UpdatePrice)
	admin.POST("/:id/image", products.UploadImage)
	engine.POST("/api/update-stock", products.UpdateStock)
	engine.GET("/api/image-base64/:filename", products.GetImageBase64)

	orders := NewOrderController(checkout, recorder, 0)
	engine.POST("/api/orders", orders.PlaceOrder)
	engine.GET("/api/order", orders.GetOrdersByEmail)
	engine.GET("/api/orders/:id", orders.GetOrder)

	addressController := NewAddressController(addresses)
	engine.GET("/api/address/:email", addressController.GetAddress)
	engine.POST("/api/save-address", addressController.SaveAddress)
	engine.DELETE("/api/delete-address/:id", addressController.DeleteAddress)

	carts := NewCartController(services.NewCartStore(db))
	engine.POST("/api/cart", requireAuth, carts.SaveCart)
	engine.GET("/api/cart", requireAuth, carts.GetCart)

	payments := NewPaymentController(nil, services.UPILinkBuilder{PayeeAddress: "store@axl", PayeeName: "TechStore"}, "INR")
	engine.POST("/api/generate-upi-link", payments.GenerateUPILink)
	engine.POST("/api/verify-payment", payments.VerifyPayment)

	engine.GET("/", GetHome)
	engine.GET("/health", Health(db))

	return &testServer{engine: engine, db: db, auth: auth, images: images}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedProduct(t *testing.T, name, price string, quantity int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: quantity}
	require.NoError(t, s.db.Create(&product).Error)
	return product
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	email := role + "@example.com"
	user, err := s.auth.Signup(context.Background(), models.SignupData{Username: role, Email: email, Password: "password1"})
	require.NoError(t, err)
	if role != services.RoleUser {
		require.NoError(t, s.db.Model(&user).Update("role", role).Error)
	}
	_, token, err := s.auth.Login(context.Background(), models.LoginData{Email: email, Password: "password1"})
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func orderBody(productID uint, qty int, unitPrice, total string, method models.PaymentMethod) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"productId": productID, "quantity": qty, "unitPrice": unitPrice}},
		"customer": map[string]any{
			"name": "Asha", "address": "12 MG Road", "city": "Chennai",
			"email": "asha@example.com", "pincode": "600001", "phone": "9876543210",
		},
		"total":         total,
		"paymentMethod": method,
	}
}

func TestPlaceOrderEndpoint(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Keyboard", "500", 5)

	rec := s.do(t, http.MethodPost, "/api/orders", orderBody(product.ID, 2, "500", "1000", models.PaymentUPI), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotZero(t, body["orderId"])
	assert.NotEmpty(t, body["trackingId"])
	assert.NotNil(t, body["transactionId"])
	assert.Equal(t, float64(1000), body["total"])
	assert.NotEmpty(t, rec.Header().Get(middlewares.RequestIDHeader))

	history := s.do(t, http.MethodGet, "/api/order?email=ASHA@example.com", nil, nil)
	require.Equal(t, http.StatusOK, history.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &orders))
	require.Len(t, orders, 1)

	one := s.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%v", body["orderId"]), nil, nil)
	require.Equal(t, http.StatusOK, one.Code)
	assert.Len(t, decode(t, one)["items"], 1)
}

func TestPlaceOrderAcceptsNumericMoney(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Mouse", "249.50", 4)

	order := orderBody(product.ID, 2, "", "", models.PaymentCashOnDelivery)
	order["items"] = []map[string]any{{"productId": product.ID, "quantity": 2, "unitPrice": 249.5}}
	order["total"] = 499

	rec := s.do(t, http.MethodPost, "/api/orders", order, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, float64(499), body["total"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, 249.5, items[0].(map[string]any)["price"])
}

func TestPlaceOrderErrorStatuses(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Monitor", "9000", 1)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantKind   services.Kind
	}{
		{name: "malformed json", body: "{", wantStatus: http.StatusBadRequest},
		{name: "validation", body: orderBody(product.ID, 1, "9000", "1", models.PaymentUPI), wantStatus: http.StatusBadRequest, wantKind: services.KindValidation},
		{name: "unknown product", body: orderBody(product.ID+10, 1, "9000", "9000", models.PaymentUPI), wantStatus: http.StatusNotFound, wantKind: services.KindNotFound},
		{name: "insufficient stock", body: orderBody(product.ID, 2, "9000", "18000", models.PaymentUPI), wantStatus: http.StatusConflict, wantKind: services.KindInsufficientStock},
		{name: "gateway without proof", body: orderBody(product.ID, 1, "9000", "9000", models.PaymentRazorpay), wantStatus: http.StatusPaymentRequired, wantKind: services.KindPaymentVerification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/orders", tt.body, nil)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			if tt.wantKind != "" {
				assert.Equal(t, string(tt.wantKind), body["kind"])
			}
		})
	}
}

func TestPlaceOrderIdempotencyHeader(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Mouse", "250", 5)
	headers := map[string]string{IdempotencyKeyHeader: "checkout-9c1e"}

	first := s.do(t, http.MethodPost, "/api/orders", orderBody(product.ID, 1, "250", "250", models.PaymentCashOnDelivery), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	orderID := decode(t, first)["orderId"]

	second := s.do(t, http.MethodPost, "/api/orders", orderBody(product.ID, 1, "250", "250", models.PaymentCashOnDelivery), headers)
	require.Equal(t, http.StatusConflict, second.Code)
	body := decode(t, second)
	assert.Equal(t, string(services.KindDuplicateRequest), body["kind"])
	assert.Equal(t, orderID, body["orderId"])
}

func TestOrdersByEmailRequiresEmail(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/order", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddressEndpoints(t *testing.T) {
	s := newTestServer(t)

	missing := s.do(t, http.MethodGet, "/api/address/asha@example.com", nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	address := map[string]any{"name": "Asha", "address": "12 MG Road", "city": "Chennai", "email": "asha@example.com", "pincode": "600001", "phone": "9876543210"}
	saved := s.do(t, http.MethodPost, "/api/save-address", address, nil)
	require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())

	address["city"] = "Madurai"
	resaved := s.do(t, http.MethodPost, "/api/save-address", address, nil)
	require.Equal(t, http.StatusOK, resaved.Code)

	got := s.do(t, http.MethodGet, "/api/address/asha@example.com", nil, nil)
	require.Equal(t, http.StatusOK, got.Code)
	stored := decode(t, got)["address"].(map[string]any)
	assert.Equal(t, "Madurai", stored["city"])

	deleted := s.do(t, http.MethodDelete, fmt.Sprintf("/api/delete-address/%v", stored["id"]), nil, nil)
	assert.Equal(t, http.StatusOK, deleted.Code)
	again := s.do(t, http.MethodDelete, fmt.Sprintf("/api/delete-address/%v", stored["id"]), nil, nil)
	assert.Equal(t, http.StatusNotFound, again.Code)

	incomplete := s.do(t, http.MethodPost, "/api/save-address", map[string]any{"email": "x@example.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, incomplete.Code)
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	signup := s.do(t, http.MethodPost, "/signup", map[string]any{"username": "asha", "email": "asha@example.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusCreated, signup.Code, signup.Body.String())
	assert.NotContains(t, signup.Body.String(), "password1")

	duplicate := s.do(t, http.MethodPost, "/signup", map[string]any{"username": "asha", "email": "asha@example.com", "password": "password1"}, nil)
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	short := s.do(t, http.MethodPost, "/signup", map[string]any{"username": "b", "email": "b@example.com", "password": "123"}, nil)
	assert.Equal(t, http.StatusBadRequest, short.Code)

	bad := s.do(t, http.MethodPost, "/login", map[string]any{"email": "asha@example.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	login := s.do(t, http.MethodPost, "/login", map[string]any{"email": "asha@example.com", "password": "password1"}, nil)
	require.Equal(t, http.StatusOK, login.Code)
	assert.NotEmpty(t, decode(t, login)["token"])
}

func TestAdminProductRoutes(t *testing.T) {
	s := newTestServer(t)
	product := map[string]any{"name": "Laptop", "price": "54999.00", "quantity": 3}

	anonymous := s.do(t, http.MethodPost, "/products", product, nil)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	userToken := s.token(t, services.RoleUser)
	forbidden := s.do(t, http.MethodPost, "/products", product, map[string]string{"Authorization": "Bearer " + userToken})
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	adminHeaders := map[string]string{"Authorization": "Bearer " + s.token(t, services.RoleAdmin)}
	created := s.do(t, http.MethodPost, "/products", product, adminHeaders)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	id := decode(t, created)["product"].(map[string]any)["id"]

	repriced := s.do(t, http.MethodPatch, fmt.Sprintf("/products/%v/price", id), map[string]any{"price": "49999"}, adminHeaders)
	require.Equal(t, http.StatusOK, repriced.Code, repriced.Body.String())

	listing := s.do(t, http.MethodGet, "/products", nil, nil)
	require.Equal(t, http.StatusOK, listing.Code)
	var products []map[string]any
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, float64(49999), products[0]["price"])

	notFound := s.do(t, http.MethodGet, "/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, notFound.Code)
}

func TestUpdateStockEndpoint(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Cable", "100", 3)

	ok := s.do(t, http.MethodPost, "/api/update-stock", map[string]any{"productId": product.ID, "quantityPurchased": 2}, nil)
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.EqualValues(t, 1, decode(t, ok)["remaining"])

	short := s.do(t, http.MethodPost, "/api/update-stock", map[string]any{"productId": product.ID, "quantityPurchased": 2}, nil)
	assert.Equal(t, http.StatusConflict, short.Code)

	invalid := s.do(t, http.MethodPost, "/api/update-stock", map[string]any{"productId": product.ID, "quantityPurchased": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestImageUploadAndBase64(t *testing.T) {
	s := newTestServer(t)
	product := s.seedProduct(t, "Webcam", "2500", 1)
	adminHeaders := map[string]string{"Authorization": "Bearer " + s.token(t, services.RoleAdmin)}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("image", "webcam.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/products/%d/image", product.ID), &form)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", adminHeaders["Authorization"])
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	name := decode(t, rec)["image"].(string)

	image := s.do(t, http.MethodGet, "/api/image-base64/"+name, nil, nil)
	require.Equal(t, http.StatusOK, image.Code)
	assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", decode(t, image)["image"])

	missing := s.do(t, http.MethodGet, "/api/image-base64/nothing.png", nil, nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	anonymous := s.do(t, http.MethodGet, "/api/cart", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	headers := map[string]string{"Authorization": "Bearer " + s.token(t, services.RoleUser)}
	saved := s.do(t, http.MethodPost, "/api/cart", map[string]any{"items": []map[string]any{{"productId": 1, "quantity": 2}}}, headers)
	require.Equal(t, http.StatusOK, saved.Code, saved.Body.String())

	got := s.do(t, http.MethodGet, "/api/cart", nil, headers)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Len(t, decode(t, got)["items"], 1)

	malformed := s.do(t, http.MethodGet, "/api/cart", nil, map[string]string{"Authorization": "Token abc"})
	assert.Equal(t, http.StatusUnauthorized, malformed.Code)
}

func TestPaymentEndpoints(t *testing.T) {
	s := newTestServer(t)

	link := s.do(t, http.MethodPost, "/api/generate-upi-link", map[string]any{"amount": "1000", "orderId": "ORD-1"}, nil)
	require.Equal(t, http.StatusOK, link.Code, link.Body.String())
	body := decode(t, link)
	assert.Equal(t, body["upiLink"], body["qrData"])
	assert.Contains(t, body["upiLink"], "am=1000.00")

	missing := s.do(t, http.MethodPost, "/api/generate-upi-link", map[string]any{"amount": "1000"}, nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	unconfigured := s.do(t, http.MethodPost, "/api/verify-payment", map[string]any{"paymentId": "p", "orderId": "o", "signature": "s"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, unconfigured.Code)
}

func TestHomeAndHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/", nil, nil).Code)

	health := s.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, health.Code)
	assert.Equal(t, "ok", decode(t, health)["status"])
}
