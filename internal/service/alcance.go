package service

import (
	"fmt"

	"github.com/Crissancio/Backend-Taller/internal/model"
)

// Alcance is the caller identity every scoped operation receives.
// MicroempresaID is the token's business, or for a superadmin the business
// named in the request (0 when none was named).
type Alcance struct {
	UsuarioID      uint
	Rol            string
	MicroempresaID uint
}

func (a Alcance) EsSuperadmin() bool { return a.Rol == model.RolSuperadmin }

// verificar fails when a resource of business mid is outside the caller's scope.
func (a Alcance) verificar(mid uint) error {
	if a.EsSuperadmin() && (a.MicroempresaID == 0 || a.MicroempresaID == mid) {
		return nil
	}
	if a.MicroempresaID != mid {
		return ErrFueraDeAlcance
	}
	return nil
}

// empresa returns the target business for create and list operations.
func (a Alcance) empresa() (uint, error) {
	if a.MicroempresaID == 0 {
		return 0, fmt.Errorf("microempresa_id requerido: %w", ErrValidacion)
	}
	return a.MicroempresaID, nil
}

func (a Alcance) usuario() *uint {
	if a.UsuarioID == 0 {
		return nil
	}
	id := a.UsuarioID
	return &id
}
