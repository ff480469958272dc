package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) error
	HistorialPrecios(ctx context.Context, alc Alcance, id uint, filter dto.HistorialPrecioFilter) (*dto.HistorialPrecioListResponse, error)
	// Catalogo is the public storefront of one business, served from Redis when possible.
	Catalogo(ctx context.Context, microempresaID uint) (*dto.CatalogoResponse, error)
}

type productoService struct {
	repo             repository.ProductoRepository
	categoriaRepo    repository.CategoriaRepository
	microempresaRepo repository.MicroempresaRepository
	historial        repository.HistorialPrecioRepository
	stock            StockService
	limites          LimitesPlan
	rdb              *redis.Client
	cacheTTL         time.Duration
}

// NewProductoService accepts a nil rdb; the catalog is then always read from
// the DB. A nil limites leaves the product count uncapped.
func NewProductoService(
	repo repository.ProductoRepository,
	categoriaRepo repository.CategoriaRepository,
	microempresaRepo repository.MicroempresaRepository,
	historial repository.HistorialPrecioRepository,
	stock StockService,
	limites LimitesPlan,
	rdb *redis.Client,
	cacheTTL time.Duration,
) ProductoService {
	return &productoService{
		repo:             repo,
		categoriaRepo:    categoriaRepo,
		microempresaRepo: microempresaRepo,
		historial:        historial,
		stock:            stock,
		limites:          limites,
		rdb:              rdb,
		cacheTTL:         cacheTTL,
	}
}

func catalogoKey(mid uint) string { return fmt.Sprintf("catalogo:%d", mid) }

func (s *productoService) invalidarCatalogo(ctx context.Context, mid uint) {
	if s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, catalogoKey(mid)).Err()
}

func (s *productoService) verificarLimite(ctx context.Context, mid uint) error {
	if s.limites == nil {
		return nil
	}
	return s.limites.VerificarProducto(ctx, mid)
}

func (s *productoService) categoriaValida(ctx context.Context, mid, categoriaID uint) error {
	cat, err := s.categoriaRepo.FindByID(ctx, categoriaID)
	if err != nil {
		return noEncontrado(err, "categoria", categoriaID)
	}
	if cat.MicroempresaID != mid {
		return fmt.Errorf("categoria %d: %w", categoriaID, ErrFueraDeAlcance)
	}
	if !cat.Activo {
		return invalido(fmt.Sprintf("la categoria %s esta inactiva", cat.Nombre))
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, alc Alcance, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	if err := s.categoriaValida(ctx, mid, req.CategoriaID); err != nil {
		return nil, err
	}
	if !req.PrecioVenta.IsPositive() {
		return nil, invalido("precio_venta debe ser mayor a cero")
	}
	if err := s.verificarLimite(ctx, mid); err != nil {
		return nil, err
	}

	p := &model.Producto{
		MicroempresaID: mid,
		CategoriaID:    req.CategoriaID,
		Nombre:         req.Nombre,
		Codigo:         req.Codigo,
		Descripcion:    req.Descripcion,
		PrecioVenta:    req.PrecioVenta,
		CostoCompra:    req.CostoCompra,
		Activo:         true,
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			return err
		}
		return s.stock.CrearRegistroTx(tx, refProducto(p), req.StockMinimo)
	})
	if err != nil {
		return nil, err
	}
	s.invalidarCatalogo(ctx, mid)
	return s.Obtener(ctx, alc, p.ID)
}

func (s *productoService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Producto, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto", id)
	}
	if err := alc.verificar(p.MicroempresaID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productoService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, alc Alcance, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	productos, total, err := s.repo.List(ctx, mid, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		data[i] = *productoToResponse(&productos[i])
	}
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, alc Alcance, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if req.CategoriaID != nil && *req.CategoriaID != p.CategoriaID {
		if err := s.categoriaValida(ctx, p.MicroempresaID, *req.CategoriaID); err != nil {
			return nil, err
		}
		p.CategoriaID = *req.CategoriaID
	}
	ventaAntes, costoAntes := p.PrecioVenta, p.CostoCompra
	if req.PrecioVenta != nil {
		if !req.PrecioVenta.IsPositive() {
			return nil, invalido("precio_venta debe ser mayor a cero")
		}
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Codigo != nil {
		p.Codigo = req.Codigo
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.CostoCompra != nil {
		if req.CostoCompra.IsNegative() {
			return nil, invalido("costo_compra no puede ser negativo")
		}
		p.CostoCompra = req.CostoCompra
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, p); err != nil {
			return err
		}
		if p.PrecioVenta.Equal(ventaAntes) && decimalPtrEqual(p.CostoCompra, costoAntes) {
			return nil
		}
		return s.historial.CreateTx(tx, &model.HistorialPrecio{
			MicroempresaID: p.MicroempresaID,
			ProductoID:     p.ID,
			UsuarioID:      alc.usuario(),
			CostoAntes:     costoAntes,
			CostoDespues:   p.CostoCompra,
			VentaAntes:     ventaAntes,
			VentaDespues:   p.PrecioVenta,
			Motivo:         model.MotivoPrecioManual,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidarCatalogo(ctx, p.MicroempresaID)
	return s.Obtener(ctx, alc, id)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s *productoService) HistorialPrecios(ctx context.Context, alc Alcance, id uint, filter dto.HistorialPrecioFilter) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.buscar(ctx, alc, id); err != nil {
		return nil, err
	}
	rows, total, err := s.historial.ListByProducto(ctx, id, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.HistorialPrecioItem, len(rows))
	for i, h := range rows {
		data[i] = dto.HistorialPrecioItem{
			ID:           h.ID,
			ProductoID:   h.ProductoID,
			UsuarioID:    h.UsuarioID,
			CompraID:     h.CompraID,
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			VentaAntes:   h.VentaAntes,
			VentaDespues: h.VentaDespues,
			Motivo:       h.Motivo,
			Fecha:        h.CreatedAt,
		}
	}
	return &dto.HistorialPrecioListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) CambiarEstado(ctx context.Context, alc Alcance, id uint, activo bool) error {
	p, err := s.buscar(ctx, alc, id)
	if err != nil {
		return err
	}
	if activo && !p.Activo {
		if err := s.verificarLimite(ctx, p.MicroempresaID); err != nil {
			return err
		}
	}
	p.Activo = activo
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.invalidarCatalogo(ctx, p.MicroempresaID)
	return nil
}

func (s *productoService) Catalogo(ctx context.Context, microempresaID uint) (*dto.CatalogoResponse, error) {
	key := catalogoKey(microempresaID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.CatalogoResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	m, err := s.microempresaRepo.FindByID(ctx, microempresaID)
	if err != nil {
		return nil, noEncontrado(err, "microempresa", microempresaID)
	}
	if !m.Activo {
		return nil, fmt.Errorf("microempresa %d: %w", microempresaID, ErrNoEncontrado)
	}
	productos, err := s.repo.ListCatalogo(ctx, microempresaID)
	if err != nil {
		return nil, err
	}
	resp := &dto.CatalogoResponse{
		MicroempresaID: m.ID,
		Microempresa:   m.Nombre,
		Moneda:         m.Moneda,
		Productos:      make([]dto.CatalogoItem, 0, len(productos)),
	}
	for _, p := range productos {
		item := dto.CatalogoItem{
			ID:          p.ID,
			Nombre:      p.Nombre,
			Descripcion: p.Descripcion,
			PrecioVenta: p.PrecioVenta,
		}
		if p.Categoria != nil {
			item.Categoria = p.Categoria.Nombre
		}
		if p.Stock != nil {
			item.Disponible = p.Stock.Disponible()
		}
		resp.Productos = append(resp.Productos, item)
	}

	// Populate cache — best effort, ignore errors
	if s.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, key, b, s.cacheTTL).Err()
		}
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	resp := &dto.ProductoResponse{
		ID:          p.ID,
		CategoriaID: p.CategoriaID,
		Nombre:      p.Nombre,
		Codigo:      p.Codigo,
		Descripcion: p.Descripcion,
		PrecioVenta: p.PrecioVenta,
		CostoCompra: p.CostoCompra,
		Activo:      p.Activo,
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	if p.Stock != nil {
		resp.Stock = p.Stock.Cantidad
		resp.Disponible = p.Stock.Disponible()
		resp.StockMinimo = p.Stock.StockMinimo
	}
	return resp
}
