package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

const maxLoginBody = 4 << 10

type claimsKey struct{}

// ClaimsFromCtx возвращает данные администратора, проверенные RequireAdmin.
func ClaimsFromCtx(ctx context.Context) (*usecase.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*usecase.Claims)
	return claims, ok
}

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// login
//
//	@Summary	Вход администратора
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		LoginRequest	true	"Email и пароль"
//	@Success	200		{object}	LoginResponse
//	@Failure	401		{object}	ErrorResponse	"invalid login credentials"
//	@Router		/auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, maxLoginBody, &req); err != nil {
		h.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.authUsecase.Login(r.Context(), &usecase.LoginReq{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger.Warnf("login failed: %s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, LoginResponse{Token: res.Token, ExpiresAt: res.ExpiresAt})
}

// RequireAdmin пропускает запрос только с действительным Bearer-токеном.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			WriteError(w, e.ErrUnauthorized)
			return
		}

		claims, err := h.authUsecase.ParseToken(strings.TrimSpace(token))
		if err != nil {
			h.logger.Warnf("%d %s", http.StatusUnauthorized, err.Error())
			WriteError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}
