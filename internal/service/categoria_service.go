package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"
)

// CategoriaService defines business operations for product categories.
type CategoriaService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error)
	Listar(ctx context.Context, alc Alcance, incluirInactivas bool) ([]dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, alc Alcance, id uint) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

// mapCategoria converts a model to a DTO response.
func mapCategoria(c model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func (s *categoriaService) nombreLibre(ctx context.Context, mid uint, nombre string, exceptID uint) error {
	existe, err := s.repo.ExistsNombre(ctx, mid, nombre, exceptID)
	if err != nil {
		return err
	}
	if existe {
		return fmt.Errorf("ya existe una categoria %q: %w", nombre, ErrConflicto)
	}
	return nil
}

func (s *categoriaService) Crear(ctx context.Context, alc Alcance, req dto.CrearCategoriaRequest) (dto.CategoriaResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return dto.CategoriaResponse{}, err
	}
	nombre := strings.TrimSpace(req.Nombre)
	if err := s.nombreLibre(ctx, mid, nombre, 0); err != nil {
		return dto.CategoriaResponse{}, err
	}

	c := &model.Categoria{
		MicroempresaID: mid,
		Nombre:         nombre,
		Descripcion:    req.Descripcion,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Listar(ctx context.Context, alc Alcance, incluirInactivas bool) ([]dto.CategoriaResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, mid, incluirInactivas)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CategoriaResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapCategoria(c))
	}
	return result, nil
}

func (s *categoriaService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Categoria, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "categoria", id)
	}
	if err := alc.verificar(c.MicroempresaID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarCategoriaRequest) (dto.CategoriaResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return dto.CategoriaResponse{}, err
	}

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if !strings.EqualFold(nombre, c.Nombre) {
			if err := s.nombreLibre(ctx, c.MicroempresaID, nombre, c.ID); err != nil {
				return dto.CategoriaResponse{}, err
			}
		}
		c.Nombre = nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return dto.CategoriaResponse{}, err
	}
	return mapCategoria(*c), nil
}

func (s *categoriaService) Desactivar(ctx context.Context, alc Alcance, id uint) error {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return err
	}
	c.Activo = false
	return s.repo.Update(ctx, c)
}
