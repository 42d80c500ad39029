package grpc

import (
	"errors"

	"github.com/brasil-hosp/go-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest),
		errors.Is(err, e.ErrMissingFields),
		errors.Is(err, e.ErrProductIDRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, e.ErrProductNotFound):
		return status.Error(codes.NotFound, e.ErrProductNotFound.Error())
	case errors.Is(err, e.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, e.ErrUnauthorized.Error())
	case errors.Is(err, e.ErrCatalogUnavailable):
		return status.Error(codes.Unavailable, e.ErrCatalogUnavailable.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

// stringField читает строковое поле запроса; отсутствие поля равно пустой строке.
func stringField(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", e.Wrap(name+" must be a string", e.ErrStatusBadRequest)
	}
	return s, nil
}
