package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProveedorService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, alc Alcance) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	// VincularProducto records (or re-activates) that the supplier sells a product.
	VincularProducto(ctx context.Context, alc Alcance, id uint, req dto.VincularProductoRequest) (*dto.ProveedorResponse, error)
	AgregarMetodoPago(ctx context.Context, alc Alcance, id uint, req dto.MetodoPagoProveedorRequest) (*dto.MetodoPagoProveedorResponse, error)
	// ActualizarPreciosMasivo applies a percentage to every active reference
	// price; with Preview set nothing is written.
	ActualizarPreciosMasivo(ctx context.Context, alc Alcance, id uint, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizacionMasivaResponse, error)
}

type proveedorService struct {
	repo         repository.ProveedorRepository
	productoRepo repository.ProductoRepository
}

func NewProveedorService(repo repository.ProveedorRepository, productoRepo repository.ProductoRepository) ProveedorService {
	return &proveedorService{repo: repo, productoRepo: productoRepo}
}

func (s *proveedorService) Crear(ctx context.Context, alc Alcance, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	p := &model.Proveedor{
		MicroempresaID: mid,
		Nombre:         req.Nombre,
		NIT:            req.NIT,
		Telefono:       req.Telefono,
		Email:          req.Email,
		Direccion:      req.Direccion,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Proveedor, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "proveedor", id)
	}
	if err := alc.verificar(p.MicroempresaID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *proveedorService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ProveedorResponse, error) {
	p, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return proveedorToResponse(p), nil
}

func (s *proveedorService) Listar(ctx context.Context, alc Alcance) ([]dto.ProveedorResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, mid)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProveedorResponse, len(list))
	for i := range list {
		out[i] = *proveedorToResponse(&list[i])
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.NIT != nil {
		p.NIT = req.NIT
	}
	if req.Telefono != nil {
		p.Telefono = req.Telefono
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Direccion != nil {
		p.Direccion = req.Direccion
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

func (s *proveedorService) VincularProducto(ctx context.Context, alc Alcance, id uint, req dto.VincularProductoRequest) (*dto.ProveedorResponse, error) {
	prov, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	prod, err := s.productoRepo.FindByID(ctx, req.ProductoID)
	if err != nil {
		return nil, noEncontrado(err, "producto", req.ProductoID)
	}
	if prod.MicroempresaID != prov.MicroempresaID {
		return nil, fmt.Errorf("producto %d: %w", req.ProductoID, ErrFueraDeAlcance)
	}
	if req.PrecioReferencia != nil && req.PrecioReferencia.IsNegative() {
		return nil, invalido("precio_referencia no puede ser negativo")
	}

	v, err := s.repo.FindVinculo(ctx, prov.ID, prod.ID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		v = &model.ProveedorProducto{ProveedorID: prov.ID, ProductoID: prod.ID}
	case err != nil:
		return nil, err
	}
	v.Activo = true
	if req.PrecioReferencia != nil {
		v.PrecioReferencia = req.PrecioReferencia
	}
	if err := s.repo.SaveVinculo(ctx, v); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

func (s *proveedorService) AgregarMetodoPago(ctx context.Context, alc Alcance, id uint, req dto.MetodoPagoProveedorRequest) (*dto.MetodoPagoProveedorResponse, error) {
	prov, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	m := &model.ProveedorMetodoPago{
		ProveedorID: prov.ID,
		Metodo:      req.Metodo,
		Detalle:     req.Detalle,
		Activo:      true,
	}
	if err := s.repo.CreateMetodoPago(ctx, m); err != nil {
		return nil, err
	}
	resp := metodoPagoToResponse(*m)
	return &resp, nil
}

var cien = decimal.NewFromInt(100)

func (s *proveedorService) ActualizarPreciosMasivo(ctx context.Context, alc Alcance, id uint, req dto.ActualizarPreciosMasivoRequest) (*dto.ActualizacionMasivaResponse, error) {
	prov, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.Porcentaje.LessThanOrEqual(cien.Neg()) {
		return nil, invalido("el porcentaje debe ser mayor a -100")
	}
	vinculos, err := s.repo.ListVinculosActivos(ctx, prov.ID)
	if err != nil {
		return nil, err
	}

	factor := decimal.NewFromInt(1).Add(req.Porcentaje.Div(cien))
	type cambio struct {
		vinculoID uint
		item      dto.PrecioPreviewItem
	}
	var cambios []cambio
	for _, v := range vinculos {
		if v.PrecioReferencia == nil {
			continue
		}
		nombre := ""
		if v.Producto != nil {
			nombre = v.Producto.Nombre
		}
		actual := *v.PrecioReferencia
		nuevo := actual.Mul(factor).Round(2)
		cambios = append(cambios, cambio{vinculoID: v.ID, item: dto.PrecioPreviewItem{
			ProductoID:   v.ProductoID,
			Nombre:       nombre,
			PrecioActual: actual,
			PrecioNuevo:  nuevo,
			Diferencia:   nuevo.Sub(actual),
		}})
	}

	resp := &dto.ActualizacionMasivaResponse{
		Proveedor:          prov.Nombre,
		Porcentaje:         req.Porcentaje,
		ProductosAfectados: len(cambios),
	}
	if req.Preview {
		resp.Preview = make([]dto.PrecioPreviewItem, len(cambios))
		for i, c := range cambios {
			resp.Preview[i] = c.item
		}
		return resp, nil
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, c := range cambios {
			if err := s.repo.UpdatePrecioReferenciaTx(tx, c.vinculoID, c.item.PrecioNuevo); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func metodoPagoToResponse(m model.ProveedorMetodoPago) dto.MetodoPagoProveedorResponse {
	return dto.MetodoPagoProveedorResponse{ID: m.ID, Metodo: m.Metodo, Detalle: m.Detalle, Activo: m.Activo}
}

func proveedorToResponse(p *model.Proveedor) *dto.ProveedorResponse {
	resp := &dto.ProveedorResponse{
		ID:          p.ID,
		Nombre:      p.Nombre,
		NIT:         p.NIT,
		Telefono:    p.Telefono,
		Email:       p.Email,
		Direccion:   p.Direccion,
		Activo:      p.Activo,
		Productos:   make([]dto.ProveedorProductoResponse, 0, len(p.Productos)),
		MetodosPago: make([]dto.MetodoPagoProveedorResponse, 0, len(p.MetodosPago)),
	}
	for _, v := range p.Productos {
		nombre := ""
		if v.Producto != nil {
			nombre = v.Producto.Nombre
		}
		resp.Productos = append(resp.Productos, dto.ProveedorProductoResponse{
			ProductoID:       v.ProductoID,
			Producto:         nombre,
			PrecioReferencia: v.PrecioReferencia,
			Activo:           v.Activo,
		})
	}
	for _, m := range p.MetodosPago {
		resp.MetodosPago = append(resp.MetodosPago, metodoPagoToResponse(m))
	}
	return resp
}
