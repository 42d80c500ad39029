package http

import (
	"context"
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/e"
)

type fakeCatalogUC struct {
	lastSearch *usecase.SearchReq
	products   []domain.Product
	err        error
}

func (f *fakeCatalogUC) Search(_ context.Context, req *usecase.SearchReq) (*usecase.SearchRes, error) {
	f.lastSearch = req
	if f.err != nil {
		return nil, f.err
	}
	return usecase.NewSearchRes(f.products), nil
}

func (f *fakeCatalogUC) Subcategories(_ context.Context, category string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"Botas", "Joelheiras"}, nil
}

func (f *fakeCatalogUC) Categories(context.Context) ([]domain.CategoryName, error) {
	return []domain.CategoryName{domain.CategoryDisposables, domain.CategoryOrthopedics}, nil
}

func (f *fakeCatalogUC) Product(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, e.Wrap("id "+id, e.ErrProductNotFound)
}

func (f *fakeCatalogUC) QuoteLink(ctx context.Context, id string) (*usecase.QuoteLinkRes, error) {
	p, err := f.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	return &usecase.QuoteLinkRes{Message: "Cotação: " + p.Name, Link: "https://wa.me/5511999999999"}, nil
}

// fakeCartUC хранит корзины по id сессии.
type fakeCartUC struct {
	mu    sync.Mutex
	carts map[string][]domain.CartItem
}

func newFakeCartUC() *fakeCartUC {
	return &fakeCartUC{carts: make(map[string][]domain.CartItem)}
}

func (f *fakeCartUC) res(session string) *usecase.CartRes {
	total := 0
	for _, it := range f.carts[session] {
		total += it.Quantity
	}
	return usecase.NewCartRes(append([]domain.CartItem(nil), f.carts[session]...), total)
}

func (f *fakeCartUC) Cart(_ context.Context, session string) *usecase.CartRes {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res(session)
}

func (f *fakeCartUC) AddItem(_ context.Context, session, productID string) (*usecase.CartRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if productID == "" {
		return nil, e.ErrProductIDRequired
	}
	items := f.carts[session]
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity++
			return f.res(session), nil
		}
	}
	f.carts[session] = append(items, domain.CartItem{ID: productID, Name: "Produto " + productID, Quantity: 1})
	return f.res(session), nil
}

func (f *fakeCartUC) RemoveItem(_ context.Context, session, productID string) *usecase.CartRes {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.carts[session][:0]
	for _, it := range f.carts[session] {
		if it.ID != productID {
			items = append(items, it)
		}
	}
	f.carts[session] = items
	return f.res(session)
}

func (f *fakeCartUC) Clear(_ context.Context, session string) *usecase.CartRes {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.carts, session)
	return f.res(session)
}

func (f *fakeCartUC) Checkout(_ context.Context, session string) (*usecase.CheckoutRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.carts[session]
	if len(items) == 0 {
		return nil, e.ErrEmptyCart
	}
	delete(f.carts, session)
	return &usecase.CheckoutRes{Items: items, Message: "msg", Link: "https://wa.me/5511999999999?text=msg"}, nil
}

type fakeAdminUC struct {
	lastList   *usecase.AdminListReq
	lastImport *usecase.ImportReq
	deleted    []string
	err        error
}

func (f *fakeAdminUC) List(_ context.Context, req *usecase.AdminListReq) ([]domain.Product, error) {
	f.lastList = req
	return []domain.Product{{ID: "1", Name: "Luva", Category: domain.CategoryDisposables}}, f.err
}

func (f *fakeAdminUC) Create(_ context.Context, req *usecase.ProductReq) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if req.Name == "" {
		return nil, e.ErrProductNameRequired
	}
	return &domain.Product{ID: "new-id", Name: req.Name, Category: domain.CategoryName(req.Category), CreatedAt: time.Now()}, nil
}

func (f *fakeAdminUC) Update(_ context.Context, id string, req *usecase.ProductReq) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Product{ID: id, Name: req.Name, Description: req.Description}, nil
}

func (f *fakeAdminUC) Delete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAdminUC) Import(_ context.Context, req *usecase.ImportReq) (*usecase.ImportRes, error) {
	f.lastImport = req
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.ImportRes{Imported: 2, Skipped: 1, ArchiveKey: "imports/x.csv"}, nil
}

func (f *fakeAdminUC) Stats(context.Context) (*usecase.StatsRes, error) {
	res := &usecase.StatsRes{CategoryCount: 1}
	res.Total = 1
	return res, f.err
}

const validToken = "valid-token"

type fakeAuthUC struct{}

func (fakeAuthUC) Login(_ context.Context, req *usecase.LoginReq) (*usecase.LoginRes, error) {
	if req.Email != "admin@brasilhosp.com.br" || req.Password != "s3nha" {
		return nil, e.Wrap("login", e.ErrInvalidCredentials)
	}
	return &usecase.LoginRes{Token: validToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (fakeAuthUC) ParseToken(token string) (*usecase.Claims, error) {
	if token != validToken {
		return nil, e.Wrap("parse token", e.ErrUnauthorized)
	}
	return &usecase.Claims{AdminID: 1, Email: "admin@brasilhosp.com.br"}, nil
}

func (fakeAuthUC) CreateAdmin(context.Context, string, string) (*domain.Admin, error) {
	return nil, e.ErrInternalServerError
}

type fakeContactUC struct {
	last *usecase.ContactReq
}

func (f *fakeContactUC) Submit(_ context.Context, req *usecase.ContactReq) (*domain.ContactRequest, error) {
	f.last = req
	if req.Email == "" {
		return nil, e.ErrMissingFields
	}
	return &domain.ContactRequest{ID: 7, Name: req.Name, Email: req.Email, CreatedAt: time.Now()}, nil
}
