package http

import (
	"time"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/usecase"
)

type ProductResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Category           string     `json:"category"`
	Subcategory        string     `json:"subcategory"`
	Description        string     `json:"description"`
	DisplayDescription string     `json:"displayDescription"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
}

type SubcategoriesResponse struct {
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type QuoteLinkResponse struct {
	Message string `json:"message"`
	Link    string `json:"link"`
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalCount int               `json:"totalCount"`
}

type CheckoutResponse struct {
	Items   []domain.CartItem `json:"items"`
	Message string            `json:"message"`
	Link    string            `json:"link"`
}

type AddCartItemRequest struct {
	ID string `json:"id"`
}

type ProductRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Description string `json:"description"`
}

type ImportResponse struct {
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	ArchiveKey string `json:"archiveKey,omitempty"`
}

type CountResponse struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type StatsResponse struct {
	Total            int             `json:"total"`
	CategoryCount    int             `json:"categoryCount"`
	Categories       []CountResponse `json:"categories"`
	Largest          *CountResponse  `json:"largest"`
	TopSubcategories []CountResponse `json:"topSubcategories"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

type ContactResponse struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	res := ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Category:           string(p.Category),
		Subcategory:        p.Subcategory,
		Description:        p.Description,
		DisplayDescription: p.DisplayDescription(),
		UpdatedAt:          p.UpdatedAt,
	}
	if !p.CreatedAt.IsZero() {
		createdAt := p.CreatedAt
		res.CreatedAt = &createdAt
	}
	return res
}

func toProductListResponse(products []domain.Product) ProductListResponse {
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = toProductResponse(&products[i])
	}
	return ProductListResponse{Products: items, Total: len(items)}
}

func toCartResponse(res *usecase.CartRes) CartResponse {
	return CartResponse{Items: res.Items, TotalCount: res.TotalCount}
}

func toCounts(counts []catalog.Count) []CountResponse {
	res := make([]CountResponse, len(counts))
	for i, c := range counts {
		res[i] = CountResponse{Name: c.Name, Value: c.Value}
	}
	return res
}

func toStatsResponse(stats *usecase.StatsRes) StatsResponse {
	res := StatsResponse{
		Total:            stats.Total,
		CategoryCount:    stats.CategoryCount,
		Categories:       toCounts(stats.Categories),
		TopSubcategories: toCounts(stats.TopSubcategories),
	}
	if stats.Largest != nil {
		res.Largest = &CountResponse{Name: stats.Largest.Name, Value: stats.Largest.Value}
	}
	return res
}

func (r *ProductRequest) toUseCase() *usecase.ProductReq {
	return &usecase.ProductReq{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Description: r.Description,
	}
}
