package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// adminClaims — полезная нагрузка токена администратора.
type adminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthUseCase выдаёт и проверяет токены администраторов.
type AuthUseCase struct {
	adminRepo AdminRepository
	secret    []byte
	issuer    string
	ttl       time.Duration
	logger    logger.Logger
	now       func() time.Time
}

func NewAuthUC(adminRepo AdminRepository, secret, issuer string, ttl time.Duration, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		adminRepo: adminRepo,
		secret:    []byte(secret),
		issuer:    issuer,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Login проверяет email и пароль. Неизвестный email и неверный пароль
// неразличимы снаружи: оба дают e.ErrInvalidCredentials.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*LoginRes, error) {
	const op = "AuthUseCase.Login"

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	admin, err := a.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrAdminNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		a.logger.Infof("Failed sign-in attempt for %s", email)
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		Email: admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(admin.ID, 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &LoginRes{Token: signed, ExpiresAt: expiresAt}, nil
}

// ParseToken проверяет подпись, издателя и срок действия токена.
func (a *AuthUseCase) ParseToken(token string) (*Claims, error) {
	const op = "AuthUseCase.ParseToken"

	var claims adminClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrUnauthorized, err))
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	return &Claims{AdminID: id, Email: claims.Email}, nil
}

// CreateAdmin заводит администратора; используется утилитой catalogctl.
func (a *AuthUseCase) CreateAdmin(ctx context.Context, email, password string) (*domain.Admin, error) {
	const op = "AuthUseCase.CreateAdmin"

	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, e.Wrap(op, e.ErrInvalidEmail)
	}
	if len(password) < minPasswordLen {
		return nil, e.Wrap(op, fmt.Errorf("%w: password must have at least %d characters", e.ErrMissingFields, minPasswordLen))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	admin, err := a.adminRepo.Create(ctx, &domain.Admin{
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return admin, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail принимает только голый адрес, без отображаемого имени.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
