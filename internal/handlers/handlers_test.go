package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technova/storefront-api/internal/catalog"
	"github.com/technova/storefront-api/internal/currency"
	"github.com/technova/storefront-api/internal/models"
	"github.com/technova/storefront-api/internal/services/cart"
	"github.com/technova/storefront-api/internal/services/orders"
	"github.com/technova/storefront-api/internal/services/payments"
	"github.com/technova/storefront-api/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes embed the service interface; calling a method without a Func panics.

type fakeCatalog struct {
	catalog.Service
	ListFunc       func(ctx context.Context, q catalog.ProductQuery) (catalog.ProductPage, error)
	GetFunc        func(ctx context.Context, idOrSlug string) (models.ProductView, error)
	InvalidateFunc func(ctx context.Context) error
}

func (f *fakeCatalog) List(ctx context.Context, q catalog.ProductQuery) (catalog.ProductPage, error) {
	return f.ListFunc(ctx, q)
}

func (f *fakeCatalog) Get(ctx context.Context, idOrSlug string) (models.ProductView, error) {
	return f.GetFunc(ctx, idOrSlug)
}

func (f *fakeCatalog) Invalidate(ctx context.Context) error {
	return f.InvalidateFunc(ctx)
}

type fakeCart struct {
	cart.Service
	AddItemFunc func(ctx context.Context, userID primitive.ObjectID, in cart.AddItemInput) (cart.Result, error)
}

func (f *fakeCart) AddItem(ctx context.Context, userID primitive.ObjectID, in cart.AddItemInput) (cart.Result, error) {
	return f.AddItemFunc(ctx, userID, in)
}

type fakeOrders struct {
	orders.Service
	GetFunc func(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error)
}

func (f *fakeOrders) Get(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error) {
	return f.GetFunc(ctx, userID, isAdmin, orderID)
}

type fakePayments struct {
	CreateIntentFunc  func(ctx context.Context, userID primitive.ObjectID, in payments.CreateIntentInput) (payments.IntentResult, error)
	HandleWebhookFunc func(ctx context.Context, payload []byte, signature string) error
}

func (f *fakePayments) CreateIntent(ctx context.Context, userID primitive.ObjectID, in payments.CreateIntentInput) (payments.IntentResult, error) {
	return f.CreateIntentFunc(ctx, userID, in)
}

func (f *fakePayments) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	return f.HandleWebhookFunc(ctx, payload, signature)
}

type fakeUploader struct {
	uploaded []string
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	f.uploaded = append(f.uploaded, filename)
	_, _ = io.Copy(io.Discard, file)
	return "https://res.cloudinary.com/demo/" + filename, nil
}

var (
	tokens   = utils.NewTokenManager("handler-test-secret-0123", time.Hour, 2*time.Hour)
	customer = primitive.NewObjectID()
)

func bearer(t *testing.T, userID primitive.ObjectID, role string) string {
	t.Helper()
	pair, err := tokens.GenerateTokens(userID.Hex(), role)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func converter(t *testing.T) *currency.Converter {
	t.Helper()
	conv, err := currency.NewDefaultConverter()
	require.NoError(t, err)
	return conv
}

// newRouter mounts the full route table; handlers left nil get empty ones.
func newRouter(t *testing.T, h Handlers) *gin.Engine {
	t.Helper()
	conv := converter(t)
	if h.Auth == nil {
		h.Auth = NewAuthHandler(nil)
	}
	if h.Products == nil {
		h.Products = NewProductHandler(&fakeCatalog{}, conv)
	}
	if h.Categories == nil {
		h.Categories = NewCategoryHandler(&fakeCatalog{}, conv)
	}
	if h.Currencies == nil {
		h.Currencies = NewCurrencyHandler(conv)
	}
	if h.Uploads == nil {
		h.Uploads = NewUploadHandler(nil)
	}
	if h.Cart == nil {
		h.Cart = NewCartHandler(&fakeCart{}, conv)
	}
	if h.Wishlist == nil {
		h.Wishlist = NewWishlistHandler(nil, conv)
	}
	if h.Compare == nil {
		h.Compare = NewCompareHandler(nil, conv)
	}
	if h.History == nil {
		h.History = NewHistoryHandler(nil, conv)
	}
	if h.Orders == nil {
		h.Orders = NewOrderHandler(&fakeOrders{})
	}
	if h.Payments == nil {
		h.Payments = NewPaymentHandler(&fakePayments{})
	}
	if h.Reviews == nil {
		h.Reviews = NewReviewHandler(nil)
	}
	h.Tokens = tokens

	r := gin.New()
	SetupRoutes(r, h)
	return r
}

func do(r http.Handler, method, path, auth string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	r := newRouter(t, Handlers{})
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", "", nil).Code)

	r = newRouter(t, Handlers{Health: func(context.Context) error { return assert.AnError }})
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/health", "", nil).Code)
}

func TestListProductsLocalizesPrices(t *testing.T) {
	var got catalog.ProductQuery
	cat := &fakeCatalog{ListFunc: func(_ context.Context, q catalog.ProductQuery) (catalog.ProductPage, error) {
		got = q
		return catalog.ProductPage{
			Products: []models.ProductView{{ID: "p1", Name: "Echo Buds Pro", Price: 100, Currency: "USD"}},
			Total:    1, Page: 1, Limit: 12, TotalPages: 1,
		}, nil
	}}
	r := newRouter(t, Handlers{Products: NewProductHandler(cat, converter(t))})

	w := do(r, http.MethodGet, "/api/v1/products?category=audio&sort=price_asc&currency=eur", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "audio", got.Category)
	assert.Equal(t, catalog.SortPriceAsc, got.Sort)

	var page catalog.ProductPage
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, 92.0, page.Products[0].Price)
	assert.Equal(t, "EUR", page.Products[0].Currency)

	w = do(r, http.MethodGet, "/api/v1/products?currency=XXX", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProductNotFound(t *testing.T) {
	cat := &fakeCatalog{GetFunc: func(context.Context, string) (models.ProductView, error) {
		return models.ProductView{}, catalog.ErrProductNotFound
	}}
	r := newRouter(t, Handlers{Products: NewProductHandler(cat, converter(t))})

	w := do(r, http.MethodGet, "/api/v1/products/missing-slug", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", decode(t, w).Error)
}

func TestCartRequiresAuth(t *testing.T) {
	r := newRouter(t, Handlers{})
	w := do(r, http.MethodPost, "/api/v1/cart/items", "", strings.NewReader(`{"productId":"x","quantity":1}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAddToCartReportsAdjustment(t *testing.T) {
	product := primitive.NewObjectID()
	svc := &fakeCart{AddItemFunc: func(_ context.Context, userID primitive.ObjectID, in cart.AddItemInput) (cart.Result, error) {
		assert.Equal(t, customer, userID)
		assert.Equal(t, 5, in.Quantity)
		return cart.Result{
			Cart: models.CartView{
				Items:  []models.CartItem{{ProductID: product, Name: "Lumen Z6", Price: 1999, Quantity: 4, MaxStock: 4}},
				Totals: models.CartTotals{ItemCount: 4, Subtotal: 7996, Total: 7996, Currency: "USD"},
			},
			Adjusted: true,
			Message:  "Only 4 available, quantity adjusted",
		}, nil
	}}
	r := newRouter(t, Handlers{Cart: NewCartHandler(svc, converter(t))})

	body := `{"productId":"` + product.Hex() + `","quantity":5,"price":0.01}`
	w := do(r, http.MethodPost, "/api/v1/cart/items", bearer(t, customer, models.RoleCustomer), strings.NewReader(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decode(t, w)
	assert.Equal(t, "Only 4 available, quantity adjusted", env.Message)
	var data struct {
		Cart struct {
			Items []struct {
				Key   string  `json:"key"`
				Price float64 `json:"price"`
			} `json:"items"`
		} `json:"cart"`
		Adjusted bool `json:"adjusted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Adjusted)
	assert.Equal(t, 1999.0, data.Cart.Items[0].Price)
	assert.Equal(t, product.Hex()+"::", data.Cart.Items[0].Key)
}

func TestAddToCartOutOfStockIsConflict(t *testing.T) {
	svc := &fakeCart{AddItemFunc: func(context.Context, primitive.ObjectID, cart.AddItemInput) (cart.Result, error) {
		return cart.Result{}, cart.ErrOutOfStock
	}}
	r := newRouter(t, Handlers{Cart: NewCartHandler(svc, converter(t))})

	w := do(r, http.MethodPost, "/api/v1/cart/items", bearer(t, customer, models.RoleCustomer),
		strings.NewReader(`{"productId":"`+primitive.NewObjectID().Hex()+`","quantity":1}`))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "out of stock", decode(t, w).Error)
}

func TestGetOrderPassesAdminFlag(t *testing.T) {
	orderID := primitive.NewObjectID()
	svc := &fakeOrders{GetFunc: func(_ context.Context, _ primitive.ObjectID, isAdmin bool, id primitive.ObjectID) (models.Order, error) {
		if !isAdmin {
			return models.Order{}, orders.ErrForbidden
		}
		return models.Order{ID: id}, nil
	}}
	r := newRouter(t, Handlers{Orders: NewOrderHandler(svc)})
	path := "/api/v1/orders/" + orderID.Hex()

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, path, bearer(t, customer, models.RoleCustomer), nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, path, bearer(t, primitive.NewObjectID(), models.RoleAdmin), nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/orders/nope", bearer(t, customer, models.RoleCustomer), nil).Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	invalidated := 0
	cat := &fakeCatalog{InvalidateFunc: func(context.Context) error {
		invalidated++
		return nil
	}}
	r := newRouter(t, Handlers{Products: NewProductHandler(cat, converter(t))})

	w := do(r, http.MethodPost, "/api/v1/admin/cache/invalidate", bearer(t, customer, models.RoleCustomer), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(r, http.MethodPost, "/api/v1/admin/cache/invalidate", bearer(t, customer, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, invalidated)
}

func TestCreatePaymentIntentForwardsIdempotencyKey(t *testing.T) {
	svc := &fakePayments{CreateIntentFunc: func(_ context.Context, userID primitive.ObjectID, in payments.CreateIntentInput) (payments.IntentResult, error) {
		assert.Equal(t, customer, userID)
		assert.Equal(t, "retry-1", in.IdempotencyKey)
		assert.Len(t, in.Items, 1)
		return payments.IntentResult{ClientSecret: "pi_1_secret", Amount: 199, AmountMinor: 19900, Currency: "USD"}, nil
	}}
	r := newRouter(t, Handlers{Payments: NewPaymentHandler(svc)})

	body := `{"items":[{"productId":"` + primitive.NewObjectID().Hex() + `","quantity":1}]}`
	w := do(r, http.MethodPost, "/api/v1/payments/create-intent", bearer(t, customer, models.RoleCustomer),
		strings.NewReader(body), "Idempotency-Key", "retry-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), "pi_1_secret")

	svc.CreateIntentFunc = func(context.Context, primitive.ObjectID, payments.CreateIntentInput) (payments.IntentResult, error) {
		return payments.IntentResult{}, payments.ErrAmountTooSmall
	}
	w = do(r, http.MethodPost, "/api/v1/payments/create-intent", bearer(t, customer, models.RoleCustomer), strings.NewReader(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook(t *testing.T) {
	svc := &fakePayments{HandleWebhookFunc: func(_ context.Context, payload []byte, signature string) error {
		if signature != "good" {
			return payments.ErrInvalidSignature
		}
		return nil
	}}
	r := newRouter(t, Handlers{Payments: NewPaymentHandler(svc)})

	w := do(r, http.MethodPost, "/api/v1/payments/webhook", "", strings.NewReader(`{}`), "Stripe-Signature", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodPost, "/api/v1/payments/webhook", "", strings.NewReader(`{}`), "Stripe-Signature", "bad")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.HandleWebhookFunc = func(context.Context, []byte, string) error { return assert.AnError }
	w = do(r, http.MethodPost, "/api/v1/payments/webhook", "", strings.NewReader(`{}`), "Stripe-Signature", "good")
	assert.Equal(t, http.StatusInternalServerError, w.Code, "Stripe retries on 5xx")
}

func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	uploader := &fakeUploader{}
	r := newRouter(t, Handlers{Uploads: NewUploadHandler(uploader)})
	admin := bearer(t, customer, models.RoleAdmin)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	body, contentType := multipartImage(t, "../../etc/passwd", png)
	w := do(r, http.MethodPost, "/api/v1/admin/upload", admin, body, "Content-Type", contentType)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, uploader.uploaded, 1)
	assert.True(t, strings.HasSuffix(uploader.uploaded[0], ".png"))
	assert.NotContains(t, uploader.uploaded[0], "passwd")

	body, contentType = multipartImage(t, "notes.png", []byte("just some text"))
	w = do(r, http.MethodPost, "/api/v1/admin/upload", admin, body, "Content-Type", contentType)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadDisabled(t *testing.T) {
	r := newRouter(t, Handlers{})
	body, contentType := multipartImage(t, "a.png", []byte("\x89PNG\r\n\x1a\n"))
	w := do(r, http.MethodPost, "/api/v1/admin/upload", bearer(t, customer, models.RoleAdmin), body, "Content-Type", contentType)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFallbackImage(t *testing.T) {
	r := newRouter(t, Handlers{})

	first := do(r, http.MethodGet, "/api/v1/media/fallback?category=laptops&seed=novabook", "", nil)
	second := do(r, http.MethodGet, "/api/v1/media/fallback?category=laptops&seed=novabook", "", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/media/fallback", "", nil).Code)

	w := do(r, http.MethodGet, "/api/v1/media/fallback?offer=summer-sale&width=800&height=300", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/800/300")
}

func TestListCurrencies(t *testing.T) {
	r := newRouter(t, Handlers{})
	w := do(r, http.MethodGet, "/api/v1/currencies", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Base       string `json:"base"`
		Currencies []struct {
			Code  string `json:"code"`
			Scale int32  `json:"scale"`
		} `json:"currencies"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, "USD", data.Base)
	assert.Equal(t, "USD", data.Currencies[0].Code)
	for _, c := range data.Currencies {
		if c.Code == "JPY" {
			assert.Equal(t, int32(0), c.Scale)
		}
	}
}
