package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"gorm.io/gorm"
)

type ClienteService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	// BuscarOCrearPorTelefonoTx is used by online checkout; existing customers
	// keep their stored data.
	BuscarOCrearPorTelefonoTx(tx *gorm.DB, microempresaID uint, datos dto.ClienteOnlineRequest) (*model.Cliente, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

// normalizarTelefono drops spacing and punctuation so "+591 700-11122" and
// "+59170011122" identify the same customer.
func normalizarTelefono(t string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(t) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mapCliente(c *model.Cliente) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:        c.ID,
		Nombre:    c.Nombre,
		Telefono:  c.Telefono,
		Documento: c.Documento,
		Email:     c.Email,
		Activo:    c.Activo,
	}
}

func (s *clienteService) Crear(ctx context.Context, alc Alcance, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	tel := normalizarTelefono(req.Telefono)
	if tel == "" {
		return nil, invalido("telefono invalido")
	}
	existe, err := s.repo.ExistsTelefono(ctx, mid, tel, 0)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, fmt.Errorf("ya existe un cliente con telefono %s: %w", tel, ErrConflicto)
	}
	c := &model.Cliente{
		MicroempresaID: mid,
		Nombre:         strings.TrimSpace(req.Nombre),
		Telefono:       tel,
		Documento:      req.Documento,
		Email:          req.Email,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := mapCliente(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, alc Alcance, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	clientes, total, err := s.repo.List(ctx, mid, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, len(clientes))
	for i := range clientes {
		data[i] = mapCliente(&clientes[i])
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Cliente, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente", id)
	}
	if err := alc.verificar(c.MicroempresaID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *clienteService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ClienteResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	resp := mapCliente(c)
	return &resp, nil
}

func (s *clienteService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.Telefono != nil {
		tel := normalizarTelefono(*req.Telefono)
		if tel == "" {
			return nil, invalido("telefono invalido")
		}
		if tel != c.Telefono {
			existe, err := s.repo.ExistsTelefono(ctx, c.MicroempresaID, tel, c.ID)
			if err != nil {
				return nil, err
			}
			if existe {
				return nil, fmt.Errorf("ya existe un cliente con telefono %s: %w", tel, ErrConflicto)
			}
			c.Telefono = tel
		}
	}
	if req.Nombre != nil {
		c.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Documento != nil {
		c.Documento = req.Documento
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := mapCliente(c)
	return &resp, nil
}

func (s *clienteService) BuscarOCrearPorTelefonoTx(tx *gorm.DB, microempresaID uint, datos dto.ClienteOnlineRequest) (*model.Cliente, error) {
	tel := normalizarTelefono(datos.Telefono)
	if tel == "" {
		return nil, invalido("telefono invalido")
	}
	c, err := s.repo.FindByTelefonoTx(tx, microempresaID, tel)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c = &model.Cliente{
		MicroempresaID: microempresaID,
		Nombre:         strings.TrimSpace(datos.Nombre),
		Telefono:       tel,
		Documento:      datos.Documento,
		Email:          datos.Email,
		Activo:         true,
	}
	if err := s.repo.CreateTx(tx, c); err != nil {
		return nil, err
	}
	return c, nil
}
