// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// Faltante describes one sale line that cannot be served from available stock.
type Faltante struct {
	ProductoID uint   `json:"producto_id"`
	Producto   string `json:"producto"`
	Solicitado int    `json:"solicitado"`
	Disponible int    `json:"disponible"`
}

// StockError is returned with 409 when a sale is rejected for lack of stock.
type StockError struct {
	Detail    string     `json:"detail"`
	Faltantes []Faltante `json:"faltantes"`
}

func NewStock(faltantes []Faltante) *StockError {
	return &StockError{Detail: "Stock insuficiente", Faltantes: faltantes}
}
