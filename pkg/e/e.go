package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest        = fmt.Errorf("bad request")
	ErrExpectedMultipart       = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields           = fmt.Errorf("missing required fields")
	ErrProductNameRequired     = fmt.Errorf("product name is required")
	ErrUnknownCategory         = fmt.Errorf("unknown category")
	ErrProductIDRequired       = fmt.Errorf("product id is required")
	ErrUnsupportedImportFormat = fmt.Errorf("unsupported import format")
	ErrEmptyImport             = fmt.Errorf("import file has no rows")
	ErrFileTooLarge            = fmt.Errorf("file too large")
	ErrEmptyCart               = fmt.Errorf("cart is empty")
	ErrInvalidEmail            = fmt.Errorf("invalid email")
	ErrUnsupportedMediaType    = fmt.Errorf("unsupported media type")

	// 401 Unauthorized
	ErrInvalidCredentials = fmt.Errorf("invalid login credentials")
	ErrUnauthorized       = fmt.Errorf("unauthorized")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrAdminNotFound   = fmt.Errorf("admin not found")
	ErrCartNotFound    = fmt.Errorf("cart not found")

	// 409 Conflict
	ErrProductAlreadyExists = fmt.Errorf("product already exists")
	ErrAdminAlreadyExists   = fmt.Errorf("admin already exists")

	// 503 Service Unavailable
	ErrCatalogUnavailable = fmt.Errorf("catalog is unavailable")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
