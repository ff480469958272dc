package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrNoEncontrado       = errors.New("no encontrado")
	ErrFueraDeAlcance     = errors.New("el recurso pertenece a otra microempresa")
	ErrPermisoDenegado    = errors.New("permiso denegado")
	ErrValidacion         = errors.New("datos invalidos")
	ErrTransicionInvalida = errors.New("transicion de estado invalida")
	ErrConflicto          = errors.New("conflicto con un recurso existente")
	ErrCredenciales       = errors.New("credenciales invalidas")

	// ErrLimitePlan is a conflict: the business already uses everything its plan allows.
	ErrLimitePlan = fmt.Errorf("limite del plan alcanzado: %w", ErrConflicto)
)

// FaltanteStock reports one product whose requested quantity exceeds availability.
type FaltanteStock struct {
	ProductoID uint
	Producto   string
	Solicitado int
	Disponible int
}

// StockInsuficienteError rejects a whole sale; it lists every short line.
type StockInsuficienteError struct {
	Faltantes []FaltanteStock
}

func (e *StockInsuficienteError) Error() string {
	parts := make([]string, len(e.Faltantes))
	for i, f := range e.Faltantes {
		parts[i] = fmt.Sprintf("%s (solicitado %d, disponible %d)", f.Producto, f.Solicitado, f.Disponible)
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// noEncontrado translates gorm.ErrRecordNotFound into ErrNoEncontrado with context.
func noEncontrado(err error, recurso string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", recurso, id, ErrNoEncontrado)
	}
	return err
}

func invalido(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidacion)
}
