package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	handler http.Handler
	catalog *fakeCatalogUC
	cart    *fakeCartUC
	admin   *fakeAdminUC
	contact *fakeContactUC
}

func newTestAPI() *testAPI {
	api := &testAPI{
		catalog: &fakeCatalogUC{products: []domain.Product{
			{ID: "1", Name: "Luva Látex", Category: domain.CategoryDisposables, Description: "Caixa com 100"},
			{ID: "2", Name: "Seringa", Category: domain.CategoryDisposables},
		}},
		cart:    newFakeCartUC(),
		admin:   &fakeAdminUC{},
		contact: &fakeContactUC{},
	}

	mux := chi.NewRouter()
	NewRouter(mux, logger.NewDiscard()).Init(&Deps{
		CatalogUC:     api.catalog,
		CartUC:        api.cart,
		AdminUC:       api.admin,
		AuthUC:        fakeAuthUC{},
		ContactUC:     api.contact,
		CartCookie:    "bh_cart",
		CartTTL:       24 * time.Hour,
		MaxImportSize: 1 << 10,
	})
	api.handler = mux

	return api
}

func (a *testAPI) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestSearchProducts(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/products?category=Descart%C3%A1veis&subcategory=Todas&search=luva", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Descartáveis", api.catalog.lastSearch.Category)
	require.Equal(t, "Todas", api.catalog.lastSearch.Subcategory)
	require.Equal(t, "luva", api.catalog.lastSearch.Search)

	res := decodeBody[ProductListResponse](t, rec)
	require.Equal(t, 2, res.Total)
	require.Equal(t, "Caixa com 100", res.Products[0].DisplayDescription)
	require.Empty(t, res.Products[1].Description)
	require.Equal(t, domain.DescriptionFallback, res.Products[1].DisplayDescription)
}

func TestSearchProductsUnavailable(t *testing.T) {
	api := newTestAPI()
	api.catalog.err = e.Wrap("sheet fetch", e.ErrCatalogUnavailable)

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	res := decodeBody[ErrorResponse](t, rec)
	require.Equal(t, ErrorResponse{Code: http.StatusServiceUnavailable, Message: "catalog is unavailable"}, res)
}

func TestCatalogReadRoutes(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/products/subcategories?category=Ortopedia", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Botas", "Joelheiras"}, decodeBody[SubcategoriesResponse](t, rec).Subcategories)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/products/2/quote-link", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Cotação: Seringa", decodeBody[QuoteLinkResponse](t, rec).Message)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/products/404", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"Descartáveis", "Ortopedia"}, decodeBody[CategoriesResponse](t, rec).Categories)
}

func TestCartSessionCookie(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"1"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]
	require.Equal(t, "bh_cart", session.Name)
	require.True(t, session.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, session.SameSite)
	require.Equal(t, int((24 * time.Hour).Seconds()), session.MaxAge)

	req := jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"1"}`)
	req.AddCookie(session)
	rec = api.do(t, req)
	require.Equal(t, 2, decodeBody[CartResponse](t, rec).TotalCount)

	// запись продлевает срок той же cookie
	refreshed := rec.Result().Cookies()
	require.Len(t, refreshed, 1)
	require.Equal(t, session.Value, refreshed[0].Value)
	require.Equal(t, session.MaxAge, refreshed[0].MaxAge)

	// чтение cookie не трогает
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(session)
	rec = api.do(t, req)
	require.Empty(t, rec.Result().Cookies())
	require.Equal(t, 2, decodeBody[CartResponse](t, rec).TotalCount)

	// без cookie выдаётся новая пустая корзина
	rec = api.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Len(t, rec.Result().Cookies(), 1)
	require.NotEqual(t, session.Value, rec.Result().Cookies()[0].Value)
	require.Zero(t, decodeBody[CartResponse](t, rec).TotalCount)
}

func TestCartMutationsRefreshCookie(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"1"}`))
	session := rec.Result().Cookies()[0]

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/1", nil),
		httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil),
	} {
		req.AddCookie(session)
		rec = api.do(t, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1, req.Method+" "+req.URL.Path)
		require.Equal(t, session.Value, cookies[0].Value)
		require.Equal(t, int((24 * time.Hour).Seconds()), cookies[0].MaxAge)
	}
}

func TestCartRejectsForgedCookie(t *testing.T) {
	api := newTestAPI()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: "bh_cart", Value: "../../etc"})
	rec := api.do(t, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	require.NotEqual(t, "../../etc", rec.Result().Cookies()[0].Value)
}

func TestCartRemoveClearCheckout(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"1"}`))
	session := rec.Result().Cookies()[0]

	send := func(req *http.Request) *httptest.ResponseRecorder {
		req.AddCookie(session)
		return api.do(t, req)
	}

	send(jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"2"}`))

	rec = send(httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/1", nil))
	require.Equal(t, []domain.CartItem{{ID: "2", Name: "Produto 2", Quantity: 1}}, decodeBody[CartResponse](t, rec).Items)

	rec = send(httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decodeBody[CheckoutResponse](t, rec).Link, "wa.me")

	rec = send(httptest.NewRequest(http.MethodPost, "/api/v1/cart/checkout", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "cart is empty", decodeBody[ErrorResponse](t, rec).Message)

	rec = send(httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil))
	res := decodeBody[CartResponse](t, rec)
	require.NotNil(t, res.Items)
	require.Empty(t, res.Items)
}

func TestCartAddBadBody(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/cart/items", `{"id":"1","qty":3}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("id=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = api.do(t, req)
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestLogin(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@brasilhosp.com.br","password":"s3nha"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, validToken, decodeBody[LoginResponse](t, rec).Token)

	rec = api.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"admin@brasilhosp.com.br","password":"x"}`))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid login credentials", decodeBody[ErrorResponse](t, rec).Message)
}

func TestAdminRequiresToken(t *testing.T) {
	api := newTestAPI()

	for _, auth := range []string{"", "Bearer", "Bearer wrong", "Basic " + validToken} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/products", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := api.do(t, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, auth)
	}
	require.Nil(t, api.admin.lastList)
}

func adminRequest(method, target, body string) *http.Request {
	req := jsonRequest(method, target, body)
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}

func TestAdminProductRoutes(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, adminRequest(http.MethodGet, "/api/v1/admin/products?search=lu&category=Todas&sort=az", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "az", api.admin.lastList.Sort)
	require.Equal(t, "lu", api.admin.lastList.Search)

	rec = api.do(t, adminRequest(http.MethodPost, "/api/v1/admin/products", `{"name":"Muleta","category":"Ortopedia"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[ProductResponse](t, rec)
	require.Equal(t, "new-id", created.ID)
	require.NotNil(t, created.CreatedAt)

	rec = api.do(t, adminRequest(http.MethodPost, "/api/v1/admin/products", `{"name":""}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, adminRequest(http.MethodPut, "/api/v1/admin/products/7", `{"name":"Muleta","description":"Par"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "7", decodeBody[ProductResponse](t, rec).ID)

	rec = api.do(t, adminRequest(http.MethodDelete, "/api/v1/admin/products/7", ""))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"7"}, api.admin.deleted)

	api.admin.err = e.Wrap("delete", e.ErrProductNotFound)
	rec = api.do(t, adminRequest(http.MethodDelete, "/api/v1/admin/products/8", ""))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartImport(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}

func TestAdminImport(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, multipartImport(t, "file", "produtos.csv", []byte("Nome\nLuva\n")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ImportResponse{Imported: 2, Skipped: 1, ArchiveKey: "imports/x.csv"}, decodeBody[ImportResponse](t, rec))
	require.Equal(t, "produtos.csv", api.admin.lastImport.Filename)
	require.Equal(t, []byte("Nome\nLuva\n"), api.admin.lastImport.Data)
}

func TestAdminImportRejects(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, multipartImport(t, "other", "produtos.csv", []byte("Nome\n")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, multipartImport(t, "file", "produtos.csv", bytes.Repeat([]byte("a"), 2<<10)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = api.do(t, adminRequest(http.MethodPost, "/api/v1/admin/products/import", `{}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "expected multipart/form-data", decodeBody[ErrorResponse](t, rec).Message)

	require.Nil(t, api.admin.lastImport)
}

func TestAdminStats(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, adminRequest(http.MethodGet, "/api/v1/admin/stats", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeBody[StatsResponse](t, rec)
	require.Equal(t, 1, res.Total)
	require.Nil(t, res.Largest)
}

func TestContactSubmit(t *testing.T) {
	api := newTestAPI()

	rec := api.do(t, jsonRequest(http.MethodPost, "/api/v1/contact", `{"name":"Maria","email":"m@h.com","message":"Oi"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(7), decodeBody[ContactResponse](t, rec).ID)
	require.Equal(t, "Maria", api.contact.last.Name)

	rec = api.do(t, jsonRequest(http.MethodPost, "/api/v1/contact", `{"name":"Maria"}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := newTestAPI().do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
