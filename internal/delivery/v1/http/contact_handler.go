package http

import (
	"net/http"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

const maxContactBody = 16 << 10

type ContactHandler struct {
	contactUsecase usecase.ContactUC
	logger         logger.Logger
}

func NewContactHandler(contactUsecase usecase.ContactUC, logger logger.Logger) *ContactHandler {
	return &ContactHandler{contactUsecase: contactUsecase, logger: logger}
}

// submit
//
//	@Summary	Заявка с формы контактов
//	@Tags		contact
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ContactRequest	true	"Заявка"
//	@Success	201		{object}	ContactResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/contact [post]
func (h *ContactHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, maxContactBody, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	created, err := h.contactUsecase.Submit(r.Context(), &usecase.ContactReq{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Company: req.Company,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, ContactResponse{ID: created.ID, CreatedAt: created.CreatedAt})
}
