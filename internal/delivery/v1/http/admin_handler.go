package http

import (
	"net/http"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxProductBody = 64 << 10

type AdminHandler struct {
	adminUsecase  usecase.AdminUC
	maxImportSize int64
	logger        logger.Logger
}

func NewAdminHandler(adminUsecase usecase.AdminUC, maxImportSize int64, logger logger.Logger) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase, maxImportSize: maxImportSize, logger: logger}
}

// listProducts
//
//	@Summary		Таблица товаров администратора
//	@Description	Поиск по подстроке, фильтр категории и сортировка (az, za, newest, oldest)
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search		query		string	false	"Подстрока названия"
//	@Param			category	query		string	false	"Категория"
//	@Param			sort		query		string	false	"Порядок"
//	@Success		200			{object}	ProductListResponse
//	@Failure		401			{object}	ErrorResponse
//	@Router			/admin/products [get]
func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	products, err := h.adminUsecase.List(r.Context(), &usecase.AdminListReq{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		h.logger.Errorf(err, "admin list")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductListResponse(products))
}

// createProduct
//
//	@Summary	Создать товар
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure	409		{object}	ErrorResponse
//	@Router		/admin/products [post]
func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, maxProductBody, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	created, err := h.adminUsecase.Create(r.Context(), req.toUseCase())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	h.logger.Infof("product %s created", created.ID)
	WriteSuccess(w, http.StatusCreated, toProductResponse(created))
}

// updateProduct
//
//	@Summary		Изменить товар
//	@Description	Перезаписывает все поля товара
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"ID товара"
//	@Param			request	body		ProductRequest	true	"Товар"
//	@Success		200		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/admin/products/{id} [put]
func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decodeJSON(w, r, maxProductBody, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	updated, err := h.adminUsecase.Update(r.Context(), chi.URLParam(r, "id"), req.toUseCase())
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(updated))
}

// deleteProduct
//
//	@Summary	Удалить товар
//	@Tags		admin
//	@Security	BearerAuth
//	@Param		id	path	string	true	"ID товара"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/products/{id} [delete]
func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.adminUsecase.Delete(r.Context(), id); err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	h.logger.Infof("product %s deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// importProducts
//
//	@Summary		Массовый импорт
//	@Description	CSV или XLSX с колонками Código, Nome, Categoria, Subgrupo, Descrição
//	@Tags			admin
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			file	formData	file	true	"Файл импорта"
//	@Success		200		{object}	ImportResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Router			/admin/products/import [post]
func (h *AdminHandler) importProducts(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 8 << 20

	// запас на служебные части multipart
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImportSize+1<<20)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, err.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	data, filename, contentType, err := readFormFile(r, "file", h.maxImportSize)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.adminUsecase.Import(r.Context(), &usecase.ImportReq{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	h.logger.Infof("import %s: %d imported, %d skipped", filename, res.Imported, res.Skipped)
	WriteSuccess(w, http.StatusOK, ImportResponse{Imported: res.Imported, Skipped: res.Skipped, ArchiveKey: res.ArchiveKey})
}

// stats
//
//	@Summary	Сводка каталога
//	@Tags		admin
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	StatsResponse
//	@Router		/admin/stats [get]
func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUsecase.Stats(r.Context())
	if err != nil {
		h.logger.Errorf(err, "admin stats")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toStatsResponse(stats))
}
