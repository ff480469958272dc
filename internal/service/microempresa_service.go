package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"gorm.io/gorm"
)

// MicroempresaService manages tenants. Creation and activation are reserved
// to superadmins; an admin may read and edit its own business.
type MicroempresaService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearMicroempresaRequest) (*dto.MicroempresaResponse, error)
	Listar(ctx context.Context, alc Alcance) ([]dto.MicroempresaResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.MicroempresaResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarMicroempresaRequest) (*dto.MicroempresaResponse, error)
	CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) (*dto.MicroempresaResponse, error)
}

type microempresaService struct {
	repo        repository.MicroempresaRepository
	usuarioRepo repository.UsuarioRepository
}

func NewMicroempresaService(repo repository.MicroempresaRepository, usuarioRepo repository.UsuarioRepository) MicroempresaService {
	return &microempresaService{repo: repo, usuarioRepo: usuarioRepo}
}

func microempresaToResponse(m *model.Microempresa) *dto.MicroempresaResponse {
	return &dto.MicroempresaResponse{
		ID:        m.ID,
		Nombre:    m.Nombre,
		NIT:       m.NIT,
		Rubro:     m.Rubro,
		Moneda:    m.Moneda,
		Email:     m.Email,
		Telefono:  m.Telefono,
		Direccion: m.Direccion,
		Activo:    m.Activo,
		CreatedAt: m.CreatedAt,
	}
}

// Crear registers the business and, when requested, its first admin user in
// the same transaction.
func (s *microempresaService) Crear(ctx context.Context, alc Alcance, req dto.CrearMicroempresaRequest) (*dto.MicroempresaResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	nit := strings.TrimSpace(req.NIT)
	existe, err := s.repo.ExistsNIT(ctx, nit)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, fmt.Errorf("ya existe una microempresa con NIT %s: %w", nit, ErrConflicto)
	}

	var admin *model.Usuario
	if req.Admin != nil {
		email := strings.ToLower(strings.TrimSpace(req.Admin.Email))
		existe, err := s.usuarioRepo.ExistsEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existe {
			return nil, fmt.Errorf("el email %s ya esta registrado: %w", email, ErrConflicto)
		}
		hash, err := hashPassword(req.Admin.Password)
		if err != nil {
			return nil, err
		}
		admin = &model.Usuario{
			Nombre:       req.Admin.Nombre,
			Email:        email,
			PasswordHash: hash,
			Rol:          model.RolAdmin,
			Activo:       true,
		}
	}

	moneda := strings.ToUpper(req.Moneda)
	if moneda == "" {
		moneda = "BOB"
	}
	m := &model.Microempresa{
		Nombre:    req.Nombre,
		NIT:       nit,
		Rubro:     req.Rubro,
		Moneda:    moneda,
		Email:     req.Email,
		Telefono:  req.Telefono,
		Direccion: req.Direccion,
		Activo:    true,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, m); err != nil {
			return err
		}
		if admin == nil {
			return nil
		}
		admin.MicroempresaID = ptrUint(m.ID)
		return s.usuarioRepo.CreateTx(tx, admin)
	})
	if err != nil {
		return nil, err
	}

	resp := microempresaToResponse(m)
	if admin != nil {
		u := usuarioToResponse(admin)
		resp.Admin = &u
	}
	return resp, nil
}

func (s *microempresaService) Listar(ctx context.Context, alc Alcance) ([]dto.MicroempresaResponse, error) {
	if !alc.EsSuperadmin() {
		m, err := s.Obtener(ctx, alc, alc.MicroempresaID)
		if err != nil {
			return nil, err
		}
		return []dto.MicroempresaResponse{*m}, nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MicroempresaResponse, len(list))
	for i := range list {
		out[i] = *microempresaToResponse(&list[i])
	}
	return out, nil
}

func (s *microempresaService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Microempresa, error) {
	if err := alc.verificar(id); err != nil {
		return nil, err
	}
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "microempresa", id)
	}
	return m, nil
}

func (s *microempresaService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.MicroempresaResponse, error) {
	m, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return microempresaToResponse(m), nil
}

func (s *microempresaService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarMicroempresaRequest) (*dto.MicroempresaResponse, error) {
	m, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		m.Nombre = *req.Nombre
	}
	if req.Rubro != nil {
		m.Rubro = *req.Rubro
	}
	if req.Moneda != nil {
		m.Moneda = strings.ToUpper(*req.Moneda)
	}
	if req.Email != nil {
		m.Email = req.Email
	}
	if req.Telefono != nil {
		m.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		m.Direccion = req.Direccion
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return microempresaToResponse(m), nil
}

func (s *microempresaService) CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) (*dto.MicroempresaResponse, error) {
	if !alc.EsSuperadmin() {
		return nil, ErrPermisoDenegado
	}
	m, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	m.Activo = activo
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return microempresaToResponse(m), nil
}
