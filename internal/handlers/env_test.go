package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kmoroz/storefront/internal/events"
	"github.com/kmoroz/storefront/internal/models"
	"github.com/kmoroz/storefront/internal/repo"
	"github.com/kmoroz/storefront/internal/service"
	"github.com/kmoroz/storefront/internal/tokens"
)

type testValidator struct{ v *validator.Validate }

func (t *testValidator) Validate(i any) error { return t.v.Struct(i) }

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Repo  *repo.Repo
	Codec *tokens.Codec

	Auth     *AuthHandler
	Product  *ProductHandler
	Category *CategoryHandler
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Order    *OrderHandler
	Review   *ReviewHandler
	Users    *UserAdminHandler
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	store := repo.New(db)
	codec := tokens.NewCodec([]byte("test-jwt-secret"))

	svc := &service.AuthService{
		Store:    store,
		Codec:    codec,
		Producer: &events.Producer{},
	}

	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}

	return &testEnv{
		T:     t,
		E:     e,
		DB:    db,
		Repo:  store,
		Codec: codec,

		Auth:     &AuthHandler{Svc: svc, Users: store},
		Product:  &ProductHandler{Repo: store, Producer: &events.Producer{}},
		Category: &CategoryHandler{Repo: store},
		Cart:     &CartHandler{Repo: store, Producer: &events.Producer{}},
		Wishlist: &WishlistHandler{Repo: store},
		Order:    &OrderHandler{Repo: store, Producer: &events.Producer{}},
		Review:   &ReviewHandler{Repo: store},
		Users:    &UserAdminHandler{Repo: store, Svc: svc},
	}
}

func (env *testEnv) doJSONRequest(method, path string, payload any, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *http.Request, echo.Context) {
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
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, req, c
}

// asIdentity marks the context as already having passed the request gate.
func (env *testEnv) asIdentity(c echo.Context, userID uint, email, role string) {
	c.Set("user_id", strconv.FormatUint(uint64(userID), 10))
	c.Set("email", email)
	c.Set("role", role)
}

func (env *testEnv) createUser(name, email, password, role string) *models.User {
	env.T.Helper()
	ctx := context.Background()
	res, err := env.Auth.Svc.Register(ctx, name, email, password, "", "")
	require.NoError(env.T, err)
	if role != models.RoleCustomer {
		_, err := env.Repo.UpdateUserRole(ctx, res.User.ID, role)
		require.NoError(env.T, err)
		res.User.Role = role
	}
	return res.User
}
