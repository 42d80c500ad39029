package usecase

import (
	"context"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

type CatalogUC interface {
	Search(ctx context.Context, req *SearchReq) (*SearchRes, error)
	Subcategories(ctx context.Context, category string) ([]string, error)
	Categories(ctx context.Context) ([]domain.CategoryName, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	QuoteLink(ctx context.Context, id string) (*QuoteLinkRes, error)
}

type CartUC interface {
	Cart(ctx context.Context, session string) *CartRes
	AddItem(ctx context.Context, session, productID string) (*CartRes, error)
	RemoveItem(ctx context.Context, session, productID string) *CartRes
	Clear(ctx context.Context, session string) *CartRes
	Checkout(ctx context.Context, session string) (*CheckoutRes, error)
}

type AdminUC interface {
	List(ctx context.Context, req *AdminListReq) ([]domain.Product, error)
	Create(ctx context.Context, req *ProductReq) (*domain.Product, error)
	Update(ctx context.Context, id string, req *ProductReq) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Import(ctx context.Context, req *ImportReq) (*ImportRes, error)
	Stats(ctx context.Context) (*StatsRes, error)
}

type AuthUC interface {
	Login(ctx context.Context, req *LoginReq) (*LoginRes, error)
	ParseToken(token string) (*Claims, error)
	CreateAdmin(ctx context.Context, email, password string) (*domain.Admin, error)
}

type ContactUC interface {
	Submit(ctx context.Context, req *ContactReq) (*domain.ContactRequest, error)
}
