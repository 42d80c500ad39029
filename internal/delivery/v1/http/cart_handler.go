package http

import (
	"net/http"
	"time"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxCartBody = 4 << 10

type CartHandler struct {
	cartUsecase usecase.CartUC
	cookieName  string
	ttl         time.Duration
	logger      logger.Logger
}

func NewCartHandler(cartUsecase usecase.CartUC, cookieName string, ttl time.Duration, logger logger.Logger) *CartHandler {
	return &CartHandler{cartUsecase: cartUsecase, cookieName: cookieName, ttl: ttl, logger: logger}
}

// session возвращает id корзины из cookie, выдавая новый при первом обращении.
// Значение, не являющееся UUID, заменяется.
func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) string {
	id, ok := h.cookieSession(r)
	if !ok {
		id = uuid.NewString()
		h.setCookie(w, id)
	}
	return id
}

// mutableSession всегда переиздаёт cookie: запись продлевает TTL корзины в Redis,
// и срок cookie должен продлеваться вместе с ним.
func (h *CartHandler) mutableSession(w http.ResponseWriter, r *http.Request) string {
	id, ok := h.cookieSession(r)
	if !ok {
		id = uuid.NewString()
	}
	h.setCookie(w, id)
	return id
}

func (h *CartHandler) cookieSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(h.cookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (h *CartHandler) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// getCart
//
//	@Summary	Текущая корзина
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [get]
func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	res := h.cartUsecase.Cart(r.Context(), h.session(w, r))
	WriteSuccess(w, http.StatusOK, toCartResponse(res))
}

// addItem
//
//	@Summary		Добавить товар в корзину
//	@Description	Повторное добавление увеличивает количество на 1
//	@Tags			cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AddCartItemRequest	true	"ID товара"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/cart/items [post]
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if err := decodeJSON(w, r, maxCartBody, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.cartUsecase.AddItem(r.Context(), h.mutableSession(w, r), req.ID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCartResponse(res))
}

// removeItem
//
//	@Summary	Удалить позицию из корзины
//	@Tags		cart
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	CartResponse
//	@Router		/cart/items/{id} [delete]
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	res := h.cartUsecase.RemoveItem(r.Context(), h.mutableSession(w, r), chi.URLParam(r, "id"))
	WriteSuccess(w, http.StatusOK, toCartResponse(res))
}

// clear
//
//	@Summary	Очистить корзину
//	@Tags		cart
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Router		/cart [delete]
func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	res := h.cartUsecase.Clear(r.Context(), h.mutableSession(w, r))
	WriteSuccess(w, http.StatusOK, toCartResponse(res))
}

// checkout
//
//	@Summary		Запросить цену по корзине
//	@Description	Формирует сообщение и ссылку WhatsApp, после чего корзина очищается
//	@Tags			cart
//	@Produce		json
//	@Success		200	{object}	CheckoutResponse
//	@Failure		400	{object}	ErrorResponse	"Корзина пуста"
//	@Router			/cart/checkout [post]
func (h *CartHandler) checkout(w http.ResponseWriter, r *http.Request) {
	res, err := h.cartUsecase.Checkout(r.Context(), h.mutableSession(w, r))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CheckoutResponse{Items: res.Items, Message: res.Message, Link: res.Link})
}
