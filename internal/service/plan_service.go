package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"
)

// PlanService manages the subscription plans offered to businesses. Only
// superadmins write; admins may read the catalog of plans.
type PlanService interface {
	Crear(ctx context.Context, alc Alcance, req dto.PlanRequest) (*dto.PlanResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.PlanFilter) ([]dto.PlanResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.PlanResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.PlanRequest) (*dto.PlanResponse, error)
	CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) (*dto.PlanResponse, error)
	// Eliminar deletes a plan no subscription ever referenced.
	Eliminar(ctx context.Context, alc Alcance, id uint) error
}

type planService struct {
	repo repository.PlanRepository
}

func NewPlanService(repo repository.PlanRepository) PlanService {
	return &planService{repo: repo}
}

func planToResponse(p *model.Plan) *dto.PlanResponse {
	return &dto.PlanResponse{
		ID:               p.ID,
		Nombre:           p.Nombre,
		Precio:           p.Precio,
		LimiteProductos:  p.LimiteProductos,
		LimiteAdmins:     p.LimiteAdmins,
		LimiteVendedores: p.LimiteVendedores,
		Descripcion:      p.Descripcion,
		Activo:           p.Activo,
	}
}

func (s *planService) nombreLibre(ctx context.Context, nombre string, exceptID uint) error {
	existe, err := s.repo.ExistsNombre(ctx, nombre, exceptID)
	if err != nil {
		return err
	}
	if existe {
		return fmt.Errorf("ya existe un plan llamado %s: %w", nombre, ErrConflicto)
	}
	return nil
}

func aplicarPlan(p *model.Plan, req dto.PlanRequest) {
	p.Nombre = strings.TrimSpace(req.Nombre)
	p.Precio = req.Precio.Round(2)
	p.LimiteProductos = req.LimiteProductos
	p.LimiteAdmins = req.LimiteAdmins
	p.LimiteVendedores = req.LimiteVendedores
	p.Descripcion = req.Descripcion
}

func (s *planService) Crear(ctx context.Context, alc Alcance, req dto.PlanRequest) (*dto.PlanResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	if req.Precio.IsNegative() {
		return nil, invalido("el precio no puede ser negativo")
	}
	if err := s.nombreLibre(ctx, strings.TrimSpace(req.Nombre), 0); err != nil {
		return nil, err
	}
	p := &model.Plan{Activo: true}
	aplicarPlan(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return planToResponse(p), nil
}

func (s *planService) Listar(ctx context.Context, _ Alcance, filter dto.PlanFilter) ([]dto.PlanResponse, error) {
	list, err := s.repo.List(ctx, filter.Activo)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, len(list))
	for i := range list {
		out[i] = *planToResponse(&list[i])
	}
	return out, nil
}

func (s *planService) buscar(ctx context.Context, id uint) (*model.Plan, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "plan", id)
	}
	return p, nil
}

func (s *planService) Obtener(ctx context.Context, _ Alcance, id uint) (*dto.PlanResponse, error) {
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return planToResponse(p), nil
}

func (s *planService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.PlanRequest) (*dto.PlanResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	if req.Precio.IsNegative() {
		return nil, invalido("el precio no puede ser negativo")
	}
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.nombreLibre(ctx, strings.TrimSpace(req.Nombre), id); err != nil {
		return nil, err
	}
	aplicarPlan(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return planToResponse(p), nil
}

func (s *planService) CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) (*dto.PlanResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	p, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Activo == activo {
		estado := "inactivo"
		if activo {
			estado = "activo"
		}
		return nil, invalido(fmt.Sprintf("el plan ya esta %s", estado))
	}
	p.Activo = activo
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return planToResponse(p), nil
}

func (s *planService) Eliminar(ctx context.Context, alc Alcance, id uint) error {
	if !alc.EsSuperadmin() {
		return ErrPermisoDenegado
	}
	if _, err := s.buscar(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountSuscripciones(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("el plan %d tiene %d suscripciones, desactivelo en su lugar: %w", id, n, ErrConflicto)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return noEncontrado(err, "plan", id)
	}
	return nil
}
