package http

import (
	"net/http"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// searchProducts
//
//	@Summary		Витрина каталога
//	@Description	Нечёткий поиск по названию с фильтрами категории и подкатегории
//	@Tags			catalog
//	@Produce		json
//	@Param			search		query		string	false	"Строка поиска"
//	@Param			category	query		string	false	"Категория (Todos — все)"
//	@Param			subcategory	query		string	false	"Подкатегория (Todas — все)"
//	@Success		200			{object}	ProductListResponse
//	@Failure		503			{object}	ErrorResponse	"Каталог недоступен"
//	@Router			/products [get]
func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	res, err := h.catalogUsecase.Search(r.Context(), &usecase.SearchReq{
		Category:    q.Get("category"),
		Subcategory: q.Get("subcategory"),
		Search:      q.Get("search"),
	})
	if err != nil {
		h.logger.Errorf(err, "search products")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductListResponse(res.Products))
}

// subcategories
//
//	@Summary		Подкатегории категории
//	@Tags			catalog
//	@Produce		json
//	@Param			category	query		string	false	"Категория"
//	@Success		200			{object}	SubcategoriesResponse
//	@Failure		503			{object}	ErrorResponse
//	@Router			/products/subcategories [get]
func (h *CatalogHandler) subcategories(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	subs, err := h.catalogUsecase.Subcategories(r.Context(), category)
	if err != nil {
		h.logger.Errorf(err, "subcategories of %q", category)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, SubcategoriesResponse{Category: category, Subcategories: subs})
}

// product
//
//	@Summary	Карточка товара
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (h *CatalogHandler) product(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalogUsecase.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(p))
}

// quoteLink
//
//	@Summary		Ссылка на запрос цены одного товара
//	@Description	Готовый текст сообщения и ссылка wa.me
//	@Tags			catalog
//	@Produce		json
//	@Param			id	path		string	true	"ID товара"
//	@Success		200	{object}	QuoteLinkResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id}/quote-link [get]
func (h *CatalogHandler) quoteLink(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalogUsecase.QuoteLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, QuoteLinkResponse{Message: res.Message, Link: res.Link})
}

// categories
//
//	@Summary	Активные категории
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{object}	CategoriesResponse
//	@Router		/categories [get]
func (h *CatalogHandler) categories(w http.ResponseWriter, r *http.Request) {
	names, err := h.catalogUsecase.Categories(r.Context())
	if err != nil {
		h.logger.Errorf(err, "list categories")
		WriteError(w, err)
		return
	}

	res := CategoriesResponse{Categories: make([]string, len(names))}
	for i, n := range names {
		res.Categories[i] = string(n)
	}

	WriteSuccess(w, http.StatusOK, res)
}
