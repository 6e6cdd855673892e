package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/handlers"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/service"
	"github.com/kmoroz/storefront/internal/tokens"
)

// serverEnv wires the full router so requests pass the real middleware chain
// and the real error handler.
type serverEnv struct {
	T     *testing.T
	E     *echo.Echo
	Repo  *repo.Repo
	Codec *tokens.Codec
	Svc   *service.AuthService
}

func newServerEnv(t *testing.T) *serverEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	))

	store := repo.New(db)
	codec := tokens.NewCodec([]byte("router-test-secret"))
	producer := &events.Producer{}
	svc := &service.AuthService{Store: store, Codec: codec, Producer: producer}

	e := echo.New()
	Register(e, &Deps{
		Codec:           codec,
		AuthHandler:     &handlers.AuthHandler{Svc: svc, Users: store},
		ProductHandler:  &handlers.ProductHandler{Repo: store, Producer: producer},
		CategoryHandler: &handlers.CategoryHandler{Repo: store},
		CartHandler:     &handlers.CartHandler{Repo: store, Producer: producer},
		WishlistHandler: &handlers.WishlistHandler{Repo: store},
		OrderHandler:    &handlers.OrderHandler{Repo: store, Producer: producer},
		ReviewHandler:   &handlers.ReviewHandler{Repo: store},
		UserHandler:     &handlers.UserAdminHandler{Repo: store, Svc: svc},
		SearchHandler:   &handlers.SearchHandler{},
	})

	return &serverEnv{T: t, E: e, Repo: store, Codec: codec, Svc: svc}
}

func (env *serverEnv) do(method, path, token string, payload any) *httptest.ResponseRecorder {
	env.T.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *serverEnv) registerAndLogin(name, email, role string) string {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))

	if role == models.RoleCustomer {
		return resp.Token
	}

	// promote out of band and log in again for a token carrying the new role
	_, err := env.Repo.UpdateUserRole(env.T.Context(), resp.User.ID, role)
	require.NoError(env.T, err)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	require.Contains(t, body, "error")
	require.Len(t, body, 1, "error responses carry exactly one field")
	return body["error"]
}

func TestRouter_Health(t *testing.T) {
	env := newServerEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", "", nil).Code)
}

func TestRouter_PublicVsGated(t *testing.T) {
	env := newServerEnv(t)

	// catalog reads are open
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/products", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/categories", "", nil).Code)

	// the cart is not
	rec := env.do(http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication required", errorBody(t, rec))

	rec = env.do(http.MethodGet, "/api/v1/cart", "such.token.wow", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", errorBody(t, rec))
}

func TestRouter_RoleSeparation(t *testing.T) {
	env := newServerEnv(t)
	customer := env.registerAndLogin("Ann", "ann@x.com", models.RoleCustomer)
	admin := env.registerAndLogin("Root", "root@x.com", models.RoleAdmin)

	// customer on an admin route
	rec := env.do(http.MethodGet, "/api/v1/admin/users", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required", errorBody(t, rec))

	// admin on a customer route
	rec = env.do(http.MethodGet, "/api/v1/cart", admin, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Customer access required", errorBody(t, rec))

	// each on their own side
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/cart", customer, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/v1/admin/users", admin, nil).Code)
}

func TestRouter_PromotionTakesEffectOnNextToken(t *testing.T) {
	env := newServerEnv(t)
	admin := env.registerAndLogin("Root", "root@x.com", models.RoleAdmin)

	rec := env.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// fresh registration cannot reach the admin surface
	rec = env.do(http.MethodGet, "/api/v1/admin/users", created.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// the admin promotes her
	rec = env.do(http.MethodPatch,
		"/api/v1/admin/users/"+idString(created.User.ID)+"/role",
		admin, map[string]string{"role": models.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the old token still carries the old role claim
	rec = env.do(http.MethodGet, "/api/v1/admin/users", created.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a fresh login picks up the new role
	rec = env.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ann@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var relogged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &relogged))

	rec = env.do(http.MethodGet, "/api/v1/admin/users", relogged.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/products/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", errorBody(t, rec))

	rec = env.do(http.MethodGet, "/api/v1/products/not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", errorBody(t, rec))
}

func TestRouter_SearchUnconfigured(t *testing.T) {
	env := newServerEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/search?q=mug", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "search is not configured", errorBody(t, rec))
}

func TestRouter_CustomerFlow(t *testing.T) {
	env := newServerEnv(t)
	admin := env.registerAndLogin("Root", "root@x.com", models.RoleAdmin)
	customer := env.registerAndLogin("Ann", "ann@x.com", models.RoleCustomer)

	rec := env.do(http.MethodPost, "/api/v1/admin/products", admin, map[string]any{
		"name": "mug", "description": "a mug", "price": 9.5, "count": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var prod models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prod))

	rec = env.do(http.MethodPost, "/api/v1/cart", customer, map[string]any{
		"product_id": prod.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/v1/cart/order", customer, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		OrderID uint    `json:"order_id"`
		Total   float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, 19.0, order.Total)

	rec = env.do(http.MethodGet, "/api/v1/orders", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// another customer cannot read her order
	stranger := env.registerAndLogin("Bob", "bob@x.com", models.RoleCustomer)
	rec = env.do(http.MethodGet, "/api/v1/orders/"+idString(order.OrderID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
