package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stationery_shop/internal/cache"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/auth"
	"github.com/Skotchmaster/stationery_shop/internal/middleware/csrf"
	"github.com/Skotchmaster/stationery_shop/internal/models"
	"github.com/Skotchmaster/stationery_shop/internal/repo"
	"github.com/Skotchmaster/stationery_shop/internal/service"
	"github.com/Skotchmaster/stationery_shop/internal/testutil"
	"github.com/Skotchmaster/stationery_shop/internal/tokens"
)

var (
	accessSecret  = []byte("test-access")
	refreshSecret = []byte("test-refresh")
)

type testEnv struct {
	db     *gorm.DB
	e      *echo.Echo
	events *testutil.Recorder
	cat    *models.Category
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCSRF(t, csrf.Config{SkipPrefixes: []string{"/"}})
}

func newTestEnvWithCSRF(t *testing.T, csrfCfg csrf.Config) *testEnv {
	t.Helper()

	gdb := testutil.NewDB(t)
	rec := &testutil.Recorder{}
	r := &repo.GormRepo{DB: gdb}
	locks := service.NewUserLocks()

	reviews := &service.ReviewService{Repo: r}
	catalog := &service.CatalogService{
		Repo:        r,
		Events:      rec,
		Reviews:     reviews,
		Recommender: &service.BasketRecommender{Repo: r, Cache: cache.Noop{}, MinSupport: service.DefaultMinSupport},
		MediaRoot:   t.TempDir(),
	}
	cart := &service.CartService{Repo: r, Locks: locks, Events: rec}
	checkout := &service.CheckoutService{Repo: r, Locks: locks, Events: rec}
	wallet := &service.WalletService{Repo: r, Locks: locks, Events: rec}
	addresses := &service.AddressService{Repo: r}
	orders := &service.OrderService{Repo: r, Events: rec}
	authSvc := &service.AuthService{Repo: r, AccessSecret: accessSecret, RefreshSecret: refreshSecret, Events: rec}
	contact := &service.ContactService{Mailer: &service.KafkaMailer{Events: rec}, To: "shop@example.com"}

	e := echo.New()
	Register(e, &Deps{
		Catalog:  &CatalogHTTP{Svc: catalog, Cart: cart, Reviews: reviews},
		Cart:     &CartHTTP{Svc: cart},
		Checkout: &CheckoutHTTP{Svc: checkout, Wallet: wallet},
		Wallet:   &WalletHTTP{Svc: wallet},
		Address:  &AddressHTTP{Svc: addresses},
		Orders:   &OrderHTTP{Svc: orders},
		Auth:     &AuthHTTP{Svc: authSvc},
		Contact:  &ContactHTTP{Svc: contact},
		Admin:    &AdminHTTP{Catalog: catalog, Importer: &service.Importer{Repo: r, Catalog: catalog}, Address: addresses, Orders: orders},
		DB:       gdb,
		AuthMW:   auth.NewAutoRefreshMiddleware(accessSecret, authSvc, false),
		CSRF:     csrfCfg,
	})

	return &testEnv{db: gdb, e: e, events: rec, cat: testutil.Category(t, gdb, "pens")}
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return req
}

func serve(te *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	te.e.ServeHTTP(rec, req)
	return rec
}

func (te *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := newJSONRequest(t, method, path, body)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	return serve(te, req)
}

func session(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()

	pair, err := tokens.Issue(u.ID, u.Role, time.Now(), accessSecret, refreshSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: tokens.AccessCookie, Value: pair.AccessToken}
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
