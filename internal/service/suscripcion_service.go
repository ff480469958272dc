package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"gorm.io/gorm"
)

// LimitesPlan enforces the current plan of a business before a user or a
// product is created. A business without a current subscription is not
// restricted.
type LimitesPlan interface {
	VerificarUsuario(ctx context.Context, microempresaID uint, rol string) error
	VerificarProducto(ctx context.Context, microempresaID uint) error
}

// SuscripcionService binds businesses to plans. Superadmins manage
// subscriptions; an admin can only look at those of its own business.
type SuscripcionService interface {
	// Crear starts a subscription and ends any other active one of the business.
	Crear(ctx context.Context, alc Alcance, req dto.CrearSuscripcionRequest) (*dto.SuscripcionResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.SuscripcionFilter) ([]dto.SuscripcionResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.SuscripcionResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarSuscripcionRequest) (*dto.SuscripcionResponse, error)
	DarDeBaja(ctx context.Context, alc Alcance, id uint) (*dto.SuscripcionResponse, error)
	// Vigente returns the subscription in force for the business plus its usage.
	Vigente(ctx context.Context, alc Alcance, microempresaID uint) (*dto.SuscripcionVigenteResponse, error)

	LimitesPlan
}

type suscripcionService struct {
	repo             repository.SuscripcionRepository
	planRepo         repository.PlanRepository
	microempresaRepo repository.MicroempresaRepository
	usuarioRepo      repository.UsuarioRepository
	productoRepo     repository.ProductoRepository
	outbox           repository.OutboxRepository
	now              func() time.Time
}

func NewSuscripcionService(
	repo repository.SuscripcionRepository,
	planRepo repository.PlanRepository,
	microempresaRepo repository.MicroempresaRepository,
	usuarioRepo repository.UsuarioRepository,
	productoRepo repository.ProductoRepository,
	outbox repository.OutboxRepository,
) SuscripcionService {
	return &suscripcionService{
		repo:             repo,
		planRepo:         planRepo,
		microempresaRepo: microempresaRepo,
		usuarioRepo:      usuarioRepo,
		productoRepo:     productoRepo,
		outbox:           outbox,
		now:              time.Now,
	}
}

func suscripcionToResponse(s *model.Suscripcion, now time.Time) *dto.SuscripcionResponse {
	resp := &dto.SuscripcionResponse{
		ID:             s.ID,
		MicroempresaID: s.MicroempresaID,
		PlanID:         s.PlanID,
		FechaInicio:    s.FechaInicio,
		FechaFin:       s.FechaFin,
		Activa:         s.Activa,
		Vigente:        s.Vigente(now),
	}
	if s.Plan != nil {
		resp.Plan = planToResponse(s.Plan)
	}
	return resp
}

// planActivo loads a plan that can still be subscribed to.
func (s *suscripcionService) planActivo(ctx context.Context, id uint) (*model.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "plan", id)
	}
	if !plan.Activo {
		return nil, invalido(fmt.Sprintf("el plan %s no esta activo", plan.Nombre))
	}
	return plan, nil
}

func (s *suscripcionService) Crear(ctx context.Context, alc Alcance, req dto.CrearSuscripcionRequest) (*dto.SuscripcionResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	if _, err := s.microempresaRepo.FindByID(ctx, req.MicroempresaID); err != nil {
		return nil, noEncontrado(err, "microempresa", req.MicroempresaID)
	}
	plan, err := s.planActivo(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fin := now.Add(model.DuracionSuscripcionDefecto)
	if req.FechaFin != nil {
		if !req.FechaFin.After(now) {
			return nil, invalido("fecha_fin debe ser posterior a la fecha actual")
		}
		fin = *req.FechaFin
	}
	sus := &model.Suscripcion{
		MicroempresaID: req.MicroempresaID,
		PlanID:         plan.ID,
		FechaInicio:    now,
		FechaFin:       fin,
		Activa:         true,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DesactivarTx(tx, req.MicroempresaID); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, sus); err != nil {
			return err
		}
		return emitirTx(tx, s.outbox, req.MicroempresaID, model.EventoSuscripcionCreada, ptrUint(sus.ID),
			fmt.Sprintf("Suscripcion al plan %s activa hasta %s", plan.Nombre, fin.Format("02/01/2006")),
			map[string]any{"suscripcion_id": sus.ID, "plan_id": plan.ID, "fecha_fin": fin})
	})
	if err != nil {
		return nil, err
	}
	sus.Plan = plan
	return suscripcionToResponse(sus, now), nil
}

func (s *suscripcionService) Listar(ctx context.Context, alc Alcance, filter dto.SuscripcionFilter) ([]dto.SuscripcionResponse, error) {
	mid := filter.MicroempresaID
	if !alc.EsSuperadmin() {
		if mid != nil {
			if err := alc.verificar(*mid); err != nil {
				return nil, err
			}
		}
		mid = ptrUint(alc.MicroempresaID)
	}
	list, err := s.repo.List(ctx, mid)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]dto.SuscripcionResponse, len(list))
	for i := range list {
		out[i] = *suscripcionToResponse(&list[i], now)
	}
	return out, nil
}

func (s *suscripcionService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Suscripcion, error) {
	sus, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "suscripcion", id)
	}
	if err := alc.verificar(sus.MicroempresaID); err != nil {
		return nil, err
	}
	return sus, nil
}

func (s *suscripcionService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.SuscripcionResponse, error) {
	sus, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return suscripcionToResponse(sus, s.now()), nil
}

func (s *suscripcionService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarSuscripcionRequest) (*dto.SuscripcionResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	sus, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.PlanID != nil && *req.PlanID != sus.PlanID {
		plan, err := s.planActivo(ctx, *req.PlanID)
		if err != nil {
			return nil, err
		}
		sus.PlanID = plan.ID
		sus.Plan = plan
	}
	if req.FechaFin != nil {
		if !req.FechaFin.After(sus.FechaInicio) {
			return nil, invalido("fecha_fin debe ser posterior a fecha_inicio")
		}
		sus.FechaFin = *req.FechaFin
	}
	if err := s.repo.Update(ctx, sus); err != nil {
		return nil, err
	}
	return suscripcionToResponse(sus, s.now()), nil
}

func (s *suscripcionService) DarDeBaja(ctx context.Context, alc Alcance, id uint) (*dto.SuscripcionResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	sus, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if sus.Activa {
		sus.Activa = false
		if err := s.repo.Update(ctx, sus); err != nil {
			return nil, err
		}
	}
	return suscripcionToResponse(sus, s.now()), nil
}

func (s *suscripcionService) Vigente(ctx context.Context, alc Alcance, microempresaID uint) (*dto.SuscripcionVigenteResponse, error) {
	if err := alc.verificar(microempresaID); err != nil {
		return nil, err
	}
	now := s.now()
	sus, err := s.vigente(ctx, microempresaID, now)
	if err != nil {
		return nil, err
	}
	if sus == nil {
		return nil, fmt.Errorf("microempresa %d sin suscripcion vigente: %w", microempresaID, ErrNoEncontrado)
	}

	var uso dto.UsoPlan
	if uso.Productos, err = s.productoRepo.CountActivos(ctx, microempresaID); err != nil {
		return nil, err
	}
	if uso.Admins, err = s.usuarioRepo.CountActivosPorRol(ctx, microempresaID, model.RolAdmin); err != nil {
		return nil, err
	}
	if uso.Vendedores, err = s.usuarioRepo.CountActivosPorRol(ctx, microempresaID, model.RolVendedor); err != nil {
		return nil, err
	}
	return &dto.SuscripcionVigenteResponse{SuscripcionResponse: *suscripcionToResponse(sus, now), Uso: uso}, nil
}

// vigente returns nil without error when the business has no subscription in force.
func (s *suscripcionService) vigente(ctx context.Context, microempresaID uint, now time.Time) (*model.Suscripcion, error) {
	sus, err := s.repo.FindVigente(ctx, microempresaID, now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sus, nil
}

func (s *suscripcionService) VerificarUsuario(ctx context.Context, microempresaID uint, rol string) error {
	sus, err := s.vigente(ctx, microempresaID, s.now())
	if err != nil || sus == nil || sus.Plan == nil {
		return err
	}
	limite := sus.Plan.LimiteRol(rol)
	if limite == nil {
		return nil
	}
	n, err := s.usuarioRepo.CountActivosPorRol(ctx, microempresaID, rol)
	if err != nil {
		return err
	}
	if n >= int64(*limite) {
		return fmt.Errorf("el plan %s permite %d usuarios %s: %w", sus.Plan.Nombre, *limite, rol, ErrLimitePlan)
	}
	return nil
}

func (s *suscripcionService) VerificarProducto(ctx context.Context, microempresaID uint) error {
	sus, err := s.vigente(ctx, microempresaID, s.now())
	if err != nil || sus == nil || sus.Plan == nil || sus.Plan.LimiteProductos == nil {
		return err
	}
	limite := *sus.Plan.LimiteProductos
	n, err := s.productoRepo.CountActivos(ctx, microempresaID)
	if err != nil {
		return err
	}
	if n >= int64(limite) {
		return fmt.Errorf("el plan %s permite %d productos activos: %w", sus.Plan.Nombre, limite, ErrLimitePlan)
	}
	return nil
}
