package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompraService drives the purchase lifecycle
// REGISTRADA → CONFIRMADA → PAGADA, with ANULADA reachable before payment.
// Stock only enters on Finalizar.
type CompraService interface {
	Crear(ctx context.Context, alc Alcance, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	AgregarDetalle(ctx context.Context, alc Alcance, id uint, req dto.DetalleCompraRequest) (*dto.CompraResponse, error)
	Confirmar(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error)
	RegistrarPago(ctx context.Context, alc Alcance, id uint, req dto.PagoCompraRequest) (*dto.CompraResponse, error)
	Finalizar(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error)
	Anular(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error)
	Obtener(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.CompraFilter) (*dto.CompraListResponse, error)
}

type compraService struct {
	repo          repository.CompraRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	historial     repository.HistorialPrecioRepository
	outbox        repository.OutboxRepository
	stock         StockService
}

func NewCompraService(
	repo repository.CompraRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	outbox repository.OutboxRepository,
	stock StockService,
) CompraService {
	return &compraService{
		repo:          repo,
		proveedorRepo: proveedorRepo,
		productoRepo:  productoRepo,
		historial:     historial,
		outbox:        outbox,
		stock:         stock,
	}
}

func transicionCompra(c *model.Compra, esperado ...string) error {
	for _, e := range esperado {
		if c.Estado == e {
			return nil
		}
	}
	return fmt.Errorf("compra %d en estado %s: %w", c.ID, c.Estado, ErrTransicionInvalida)
}

func (s *compraService) Crear(ctx context.Context, alc Alcance, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	prov, err := s.proveedorRepo.FindByID(ctx, req.ProveedorID)
	if err != nil {
		return nil, noEncontrado(err, "proveedor", req.ProveedorID)
	}
	if prov.MicroempresaID != mid {
		return nil, fmt.Errorf("proveedor %d: %w", req.ProveedorID, ErrFueraDeAlcance)
	}
	if !prov.Activo {
		return nil, invalido(fmt.Sprintf("el proveedor %s esta inactivo", prov.Nombre))
	}
	c := &model.Compra{
		MicroempresaID: mid,
		ProveedorID:    prov.ID,
		UsuarioID:      alc.usuario(),
		Fecha:          time.Now(),
		Total:          decimal.Zero,
		Estado:         model.CompraRegistrada,
		Observacion:    req.Observacion,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, c.ID)
}

func (s *compraService) buscar(ctx context.Context, alc Alcance, id uint) (*model.Compra, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "compra", id)
	}
	if err := alc.verificar(c.MicroempresaID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *compraService) AgregarDetalle(ctx context.Context, alc Alcance, id uint, req dto.DetalleCompraRequest) (*dto.CompraResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	if err := transicionCompra(c, model.CompraRegistrada); err != nil {
		return nil, err
	}
	prod, err := s.productoRepo.FindByID(ctx, req.ProductoID)
	if err != nil {
		return nil, noEncontrado(err, "producto", req.ProductoID)
	}
	if prod.MicroempresaID != c.MicroempresaID {
		return nil, fmt.Errorf("producto %d: %w", req.ProductoID, ErrFueraDeAlcance)
	}
	v, err := s.proveedorRepo.FindVinculo(ctx, c.ProveedorID, prod.ID)
	if err != nil || !v.Activo {
		return nil, invalido(fmt.Sprintf("el proveedor no suministra el producto %s", prod.Nombre))
	}
	if req.Cantidad <= 0 || !req.CostoUnitario.IsPositive() {
		return nil, invalido("cantidad y costo_unitario deben ser positivos")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "compra", id)
		}
		if err := transicionCompra(locked, model.CompraRegistrada); err != nil {
			return err
		}
		d := &model.DetalleCompra{
			CompraID:      id,
			ProductoID:    prod.ID,
			Cantidad:      req.Cantidad,
			CostoUnitario: req.CostoUnitario,
			Subtotal:      req.CostoUnitario.Mul(decimal.NewFromInt(int64(req.Cantidad))),
		}
		if err := s.repo.CreateDetalleTx(tx, d); err != nil {
			return err
		}
		total := d.Subtotal
		for _, prev := range locked.Detalles {
			total = total.Add(prev.Subtotal)
		}
		return s.repo.UpdateTotalTx(tx, id, total)
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

func (s *compraService) Confirmar(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error) {
	if _, err := s.buscar(ctx, alc, id); err != nil {
		return nil, err
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "compra", id)
		}
		if err := transicionCompra(locked, model.CompraRegistrada); err != nil {
			return err
		}
		if len(locked.Detalles) == 0 {
			return invalido("la compra no tiene detalles")
		}
		return s.repo.UpdateEstadoTx(tx, id, model.CompraConfirmada)
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

func (s *compraService) RegistrarPago(ctx context.Context, alc Alcance, id uint, req dto.PagoCompraRequest) (*dto.CompraResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	m, err := s.proveedorRepo.FindMetodoPago(ctx, req.MetodoPagoID)
	if err != nil {
		return nil, noEncontrado(err, "metodo de pago", req.MetodoPagoID)
	}
	if m.ProveedorID != c.ProveedorID || !m.Activo {
		return nil, invalido("el metodo de pago no pertenece al proveedor de la compra")
	}
	if !req.Monto.IsPositive() {
		return nil, invalido("monto debe ser mayor a cero")
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "compra", id)
		}
		if err := transicionCompra(locked, model.CompraConfirmada); err != nil {
			return err
		}
		return s.repo.CreatePagoTx(tx, &model.PagoCompra{
			CompraID:     id,
			MetodoPagoID: m.ID,
			Monto:        req.Monto,
			Referencia:   req.Referencia,
			Fecha:        time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

// Finalizar marks the purchase PAGADA and brings every detail into stock,
// refreshing each product's costo_compra, in one transaction.
func (s *compraService) Finalizar(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	nombres := make(map[uint]string, len(c.Detalles))
	productos := make(map[uint]*model.Producto, len(c.Detalles))
	for _, d := range c.Detalles {
		if d.Producto != nil {
			nombres[d.ProductoID] = d.Producto.Nombre
			productos[d.ProductoID] = d.Producto
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "compra", id)
		}
		if err := transicionCompra(locked, model.CompraConfirmada); err != nil {
			return err
		}
		if len(locked.Pagos) == 0 {
			return invalido("la compra necesita al menos un pago registrado")
		}
		if err := s.repo.UpdateEstadoTx(tx, id, model.CompraPagada); err != nil {
			return err
		}
		info := MovimientoInfo{
			Tipo:         model.MovimientoCompra,
			Motivo:       fmt.Sprintf("Compra #%d", id),
			ReferenciaID: ptrUint(id),
		}
		// Stock rows are locked in ascending product id, the same order sales use.
		detalles := append([]model.DetalleCompra(nil), locked.Detalles...)
		sort.SliceStable(detalles, func(i, j int) bool { return detalles[i].ProductoID < detalles[j].ProductoID })
		for _, d := range detalles {
			ref := ProductoRef{ID: d.ProductoID, MicroempresaID: locked.MicroempresaID, Nombre: nombres[d.ProductoID]}
			if _, err := s.stock.AjustarTx(tx, ref, d.Cantidad, info); err != nil {
				return err
			}
			if err := s.productoRepo.UpdateCostoTx(tx, d.ProductoID, d.CostoUnitario); err != nil {
				return err
			}
			if err := s.registrarCostoTx(tx, locked, productos[d.ProductoID], d.CostoUnitario, alc.usuario()); err != nil {
				return err
			}
		}
		return emitirTx(tx, s.outbox, locked.MicroempresaID, model.EventoCompraFinalizada, ptrUint(id),
			fmt.Sprintf("Compra #%d finalizada por %s", id, locked.Total.StringFixed(2)),
			map[string]any{"compra_id": id, "proveedor_id": locked.ProveedorID, "total": locked.Total.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

// registrarCostoTx appends a price-history row when a finalized purchase
// changes the product's cost. p is updated in place so repeated lines of the
// same product chain their before/after values.
func (s *compraService) registrarCostoTx(tx *gorm.DB, c *model.Compra, p *model.Producto, costo decimal.Decimal, usuarioID *uint) error {
	if p == nil || (p.CostoCompra != nil && p.CostoCompra.Equal(costo)) {
		return nil
	}
	nuevo := costo
	h := &model.HistorialPrecio{
		MicroempresaID: c.MicroempresaID,
		ProductoID:     p.ID,
		UsuarioID:      usuarioID,
		CompraID:       ptrUint(c.ID),
		CostoAntes:     p.CostoCompra,
		CostoDespues:   &nuevo,
		VentaAntes:     p.PrecioVenta,
		VentaDespues:   p.PrecioVenta,
		Motivo:         model.MotivoPrecioCompra,
	}
	if err := s.historial.CreateTx(tx, h); err != nil {
		return err
	}
	p.CostoCompra = &nuevo
	return nil
}

func (s *compraService) Anular(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error) {
	if _, err := s.buscar(ctx, alc, id); err != nil {
		return nil, err
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, id)
		if err != nil {
			return noEncontrado(err, "compra", id)
		}
		if err := transicionCompra(locked, model.CompraRegistrada, model.CompraConfirmada); err != nil {
			return err
		}
		return s.repo.UpdateEstadoTx(tx, id, model.CompraAnulada)
	})
	if err != nil {
		return nil, err
	}
	return s.Obtener(ctx, alc, id)
}

func (s *compraService) Obtener(ctx context.Context, alc Alcance, id uint) (*dto.CompraResponse, error) {
	c, err := s.buscar(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return compraToResponse(c), nil
}

func (s *compraService) Listar(ctx context.Context, alc Alcance, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	compras, total, err := s.repo.List(ctx, mid, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CompraResponse, len(compras))
	for i := range compras {
		data[i] = *compraToResponse(&compras[i])
	}
	return &dto.CompraListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	resp := &dto.CompraResponse{
		ID:          c.ID,
		ProveedorID: c.ProveedorID,
		Fecha:       c.Fecha,
		Total:       c.Total,
		Pagado:      decimal.Zero,
		Estado:      c.Estado,
		Observacion: c.Observacion,
		Detalles:    make([]dto.DetalleCompraResponse, len(c.Detalles)),
		Pagos:       make([]dto.PagoCompraResponse, len(c.Pagos)),
	}
	if c.Proveedor != nil {
		resp.Proveedor = c.Proveedor.Nombre
	}
	for i, d := range c.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		resp.Detalles[i] = dto.DetalleCompraResponse{
			ID:            d.ID,
			ProductoID:    d.ProductoID,
			Producto:      nombre,
			Cantidad:      d.Cantidad,
			CostoUnitario: d.CostoUnitario,
			Subtotal:      d.Subtotal,
		}
	}
	for i, p := range c.Pagos {
		metodo := ""
		if p.MetodoPago != nil {
			metodo = p.MetodoPago.Metodo
		}
		resp.Pagos[i] = dto.PagoCompraResponse{
			ID:           p.ID,
			MetodoPagoID: p.MetodoPagoID,
			Metodo:       metodo,
			Monto:        p.Monto,
			Referencia:   p.Referencia,
			Fecha:        p.Fecha,
		}
		resp.Pagado = resp.Pagado.Add(p.Monto)
	}
	return resp
}
