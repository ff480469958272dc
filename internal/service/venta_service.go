package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/metrics"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	CrearVentaPresencial(ctx context.Context, alc Alcance, req dto.CrearVentaPresencialRequest) (*dto.VentaResponse, error)
	CrearVentaOnline(ctx context.Context, microempresaID uint, req dto.CrearVentaOnlineRequest) (*dto.VentaResponse, error)
	RegistrarComprobante(ctx context.Context, ventaID uint, req dto.ComprobantePagoRequest) (*dto.VentaResponse, error)
	ValidarPago(ctx context.Context, alc Alcance, ventaID uint) (*dto.VentaResponse, error)
	RechazarPago(ctx context.Context, alc Alcance, ventaID uint) (*dto.VentaResponse, error)
	// ExpirarPendientes cancels online sales still unpaid before antes and
	// returns how many were cancelled.
	ExpirarPendientes(ctx context.Context, antes time.Time) (int, error)
	ObtenerVenta(ctx context.Context, alc Alcance, id uint) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, alc Alcance, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ComprobantePDF(ctx context.Context, alc Alcance, id uint) ([]byte, error)
}

type ventaService struct {
	repo             repository.VentaRepository
	productoRepo     repository.ProductoRepository
	microempresaRepo repository.MicroempresaRepository
	outbox           repository.OutboxRepository
	clientes         ClienteService
	stock            StockService
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	microempresaRepo repository.MicroempresaRepository,
	outbox repository.OutboxRepository,
	clientes ClienteService,
	stock StockService,
) VentaService {
	return &ventaService{
		repo:             repo,
		productoRepo:     productoRepo,
		microempresaRepo: microempresaRepo,
		outbox:           outbox,
		clientes:         clientes,
		stock:            stock,
	}
}

const (
	metodoPagoDefault  = "EFECTIVO"
	expiracionLoteMax  = 100
	resultadoValidado  = "validado"
	resultadoRechazado = "rechazado"
	resultadoExpirado  = "expirado"
)

type lineaResuelta struct {
	LineaStock
	precio   decimal.Decimal
	subtotal decimal.Decimal
}

// resolverLineas loads every product of the request, checks that it can be
// sold by business mid and prices each line. Client prices are only honoured
// when aceptarPrecio is set (presencial sales).
func (s *ventaService) resolverLineas(ctx context.Context, mid uint, items []dto.ItemVentaRequest, aceptarPrecio bool) ([]lineaResuelta, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, invalido("la venta necesita al menos un item")
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductoID)
	}
	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, err
	}
	porID := make(map[uint]*model.Producto, len(productos))
	for i := range productos {
		porID[productos[i].ID] = &productos[i]
	}

	total := decimal.Zero
	out := make([]lineaResuelta, 0, len(items))
	for _, it := range items {
		if it.Cantidad <= 0 {
			return nil, decimal.Zero, invalido(fmt.Sprintf("cantidad invalida para el producto %d", it.ProductoID))
		}
		p, ok := porID[it.ProductoID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("producto %d: %w", it.ProductoID, ErrNoEncontrado)
		}
		if p.MicroempresaID != mid {
			return nil, decimal.Zero, fmt.Errorf("producto %d: %w", it.ProductoID, ErrFueraDeAlcance)
		}
		if !p.Activo {
			return nil, decimal.Zero, invalido(fmt.Sprintf("el producto %s esta inactivo", p.Nombre))
		}
		precio := p.PrecioVenta
		if aceptarPrecio && it.PrecioUnitario != nil {
			if !it.PrecioUnitario.IsPositive() {
				return nil, decimal.Zero, invalido(fmt.Sprintf("precio invalido para %s", p.Nombre))
			}
			precio = *it.PrecioUnitario
		}
		subtotal := precio.Mul(decimal.NewFromInt(int64(it.Cantidad)))
		total = total.Add(subtotal)
		out = append(out, lineaResuelta{
			LineaStock: LineaStock{ProductoRef: refProducto(p), Cantidad: it.Cantidad},
			precio:     precio,
			subtotal:   subtotal,
		})
	}
	return out, total, nil
}

func lineasStock(lineas []lineaResuelta) []LineaStock {
	out := make([]LineaStock, len(lineas))
	for i, l := range lineas {
		out[i] = l.LineaStock
	}
	return out
}

func detallesVenta(lineas []lineaResuelta) []model.DetalleVenta {
	out := make([]model.DetalleVenta, len(lineas))
	for i, l := range lineas {
		out[i] = model.DetalleVenta{
			ProductoID:     l.ID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.precio,
			Subtotal:       l.subtotal,
		}
	}
	return out
}

// ── Creation ──────────────────────────────────────────────────────────────────

func (s *ventaService) CrearVentaPresencial(ctx context.Context, alc Alcance, req dto.CrearVentaPresencialRequest) (*dto.VentaResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	if req.ClienteID != nil {
		if _, err := s.clientes.Obtener(ctx, alc, *req.ClienteID); err != nil {
			return nil, err
		}
	}
	lineas, total, err := s.resolverLineas(ctx, mid, req.Items, true)
	if err != nil {
		return nil, err
	}
	metodo := req.MetodoPago
	if metodo == "" {
		metodo = metodoPagoDefault
	}

	now := time.Now()
	venta := model.Venta{
		MicroempresaID: mid,
		ClienteID:      req.ClienteID,
		UsuarioID:      alc.usuario(),
		Fecha:          now,
		Total:          total,
		Estado:         model.VentaPagada,
		Tipo:           model.VentaPresencial,
		Detalles:       detallesVenta(lineas),
		Pagos:          []model.PagoVenta{{Metodo: metodo, Estado: model.PagoValidado, Fecha: now}},
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.stock.VerificarDisponibleTx(tx, lineasStock(lineas)); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}
		info := MovimientoInfo{
			Tipo:         model.MovimientoVenta,
			Motivo:       fmt.Sprintf("Venta #%d", venta.ID),
			ReferenciaID: ptrUint(venta.ID),
		}
		for _, l := range lineas {
			if _, err := s.stock.AjustarTx(tx, l.ProductoRef, -l.Cantidad, info); err != nil {
				return fmt.Errorf("descontando stock de %s: %w", l.Nombre, err)
			}
		}
		return emitirTx(tx, s.outbox, mid, model.EventoVentaRegistrada, ptrUint(venta.ID),
			fmt.Sprintf("Venta #%d registrada por %s", venta.ID, total.StringFixed(2)),
			map[string]any{"venta_id": venta.ID, "total": total.StringFixed(2), "tipo": venta.Tipo})
	})
	if err != nil {
		return nil, err
	}
	metrics.VentasRegistradas.WithLabelValues(model.VentaPresencial).Inc()
	return s.recargar(ctx, &venta)
}

func (s *ventaService) CrearVentaOnline(ctx context.Context, microempresaID uint, req dto.CrearVentaOnlineRequest) (*dto.VentaResponse, error) {
	m, err := s.microempresaRepo.FindByID(ctx, microempresaID)
	if err != nil {
		return nil, noEncontrado(err, "microempresa", microempresaID)
	}
	if !m.Activo {
		return nil, fmt.Errorf("microempresa %d: %w", microempresaID, ErrNoEncontrado)
	}
	lineas, total, err := s.resolverLineas(ctx, microempresaID, req.Items, false)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	venta := model.Venta{
		MicroempresaID: microempresaID,
		Fecha:          now,
		Total:          total,
		Estado:         model.VentaPendientePago,
		Tipo:           model.VentaOnline,
		Detalles:       detallesVenta(lineas),
		Pagos: []model.PagoVenta{{
			Metodo:         req.MetodoPago,
			ComprobanteURL: req.ComprobanteURL,
			Estado:         model.PagoPendiente,
			Fecha:          now,
		}},
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cliente, err := s.clientes.BuscarOCrearPorTelefonoTx(tx, microempresaID, req.Cliente)
		if err != nil {
			return err
		}
		venta.ClienteID = ptrUint(cliente.ID)
		venta.Cliente = cliente

		if err := s.stock.ReservarTx(tx, lineasStock(lineas)); err != nil {
			return err
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}
		return emitirTx(tx, s.outbox, microempresaID, model.EventoVentaOnlineCreada, ptrUint(venta.ID),
			fmt.Sprintf("Nueva venta online #%d de %s por %s, pendiente de pago", venta.ID, cliente.Nombre, total.StringFixed(2)),
			map[string]any{"venta_id": venta.ID, "total": total.StringFixed(2), "cliente": cliente.Nombre, "telefono": cliente.Telefono})
	})
	if err != nil {
		return nil, err
	}
	metrics.VentasRegistradas.WithLabelValues(model.VentaOnline).Inc()
	return s.recargar(ctx, &venta)
}

// RegistrarComprobante lets the customer attach a new proof of payment. A phone
// that does not match the sale's customer is reported as not found.
func (s *ventaService) RegistrarComprobante(ctx context.Context, ventaID uint, req dto.ComprobantePagoRequest) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, noEncontrado(err, "venta", ventaID)
	}
	if v.Tipo != model.VentaOnline || v.Cliente == nil ||
		normalizarTelefono(v.Cliente.Telefono) != normalizarTelefono(req.Telefono) {
		return nil, fmt.Errorf("venta %d: %w", ventaID, ErrNoEncontrado)
	}

	url := req.ComprobanteURL
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, ventaID)
		if err != nil {
			return noEncontrado(err, "venta", ventaID)
		}
		if locked.Estado != model.VentaPendientePago {
			return fmt.Errorf("venta %d en estado %s: %w", ventaID, locked.Estado, ErrTransicionInvalida)
		}
		// The new proof supersedes any earlier one still waiting for review.
		for _, p := range locked.Pagos {
			if p.Estado != model.PagoPendiente {
				continue
			}
			if err := s.repo.UpdatePagoEstadoTx(tx, p.ID, model.PagoRechazado); err != nil {
				return err
			}
		}
		return s.repo.CreatePagoTx(tx, &model.PagoVenta{
			VentaID:        ventaID,
			Metodo:         req.Metodo,
			ComprobanteURL: &url,
			Estado:         model.PagoPendiente,
			Fecha:          time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.recargar(ctx, v)
}

// ── Payment state machine ────────────────────────────────────────────────────

func (s *ventaService) ventaEnAlcance(ctx context.Context, alc Alcance, id uint) (*model.Venta, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "venta", id)
	}
	if err := alc.verificar(v.MicroempresaID); err != nil {
		return nil, err
	}
	return v, nil
}

// lineasDeDetalles rebuilds stock lines from locked detail rows, taking
// product names from the preloaded copy of the sale.
func lineasDeDetalles(mid uint, detalles []model.DetalleVenta, nombres *model.Venta) []LineaStock {
	porProducto := make(map[uint]string, len(nombres.Detalles))
	for _, d := range nombres.Detalles {
		if d.Producto != nil {
			porProducto[d.ProductoID] = d.Producto.Nombre
		}
	}
	out := make([]LineaStock, len(detalles))
	for i, d := range detalles {
		out[i] = LineaStock{
			ProductoRef: ProductoRef{ID: d.ProductoID, MicroempresaID: mid, Nombre: porProducto[d.ProductoID]},
			Cantidad:    d.Cantidad,
		}
	}
	return out
}

func (s *ventaService) ValidarPago(ctx context.Context, alc Alcance, ventaID uint) (*dto.VentaResponse, error) {
	v, err := s.ventaEnAlcance(ctx, alc, ventaID)
	if err != nil {
		return nil, err
	}

	validada := false
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, ventaID)
		if err != nil {
			return noEncontrado(err, "venta", ventaID)
		}
		switch locked.Estado {
		case model.VentaPagada:
			return nil
		case model.VentaCancelada:
			return fmt.Errorf("venta %d cancelada: %w", ventaID, ErrTransicionInvalida)
		}

		if err := s.repo.UpdateEstadoTx(tx, ventaID, model.VentaPagada); err != nil {
			return err
		}
		if p := locked.UltimoPago(); p != nil {
			if err := s.repo.UpdatePagoEstadoTx(tx, p.ID, model.PagoValidado); err != nil {
				return err
			}
		}
		info := MovimientoInfo{
			Tipo:         model.MovimientoVenta,
			Motivo:       fmt.Sprintf("Venta online #%d", ventaID),
			ReferenciaID: ptrUint(ventaID),
		}
		lineas := lineasDeDetalles(locked.MicroempresaID, locked.Detalles, v)
		if err := s.stock.ConsumirReservaTx(tx, lineas, info); err != nil {
			return err
		}
		validada = true
		return emitirTx(tx, s.outbox, locked.MicroempresaID, model.EventoPagoVentaConfirmado, ptrUint(ventaID),
			fmt.Sprintf("Pago confirmado para la venta #%d por %s", ventaID, locked.Total.StringFixed(2)),
			map[string]any{"venta_id": ventaID, "total": locked.Total.StringFixed(2)})
	})
	if err != nil {
		return nil, err
	}
	if validada {
		metrics.PagosResueltos.WithLabelValues(resultadoValidado).Inc()
	}
	return s.recargar(ctx, v)
}

func (s *ventaService) RechazarPago(ctx context.Context, alc Alcance, ventaID uint) (*dto.VentaResponse, error) {
	v, err := s.ventaEnAlcance(ctx, alc, ventaID)
	if err != nil {
		return nil, err
	}
	cancelada, err := s.cancelar(ctx, v, fmt.Sprintf("Pago rechazado, venta #%d cancelada", ventaID))
	if err != nil {
		return nil, err
	}
	if cancelada {
		metrics.PagosResueltos.WithLabelValues(resultadoRechazado).Inc()
	}
	return s.recargar(ctx, v)
}

// cancelar moves a PENDIENTE_PAGO sale to CANCELADA and releases its
// reservation. It reports false when the sale was already cancelled.
func (s *ventaService) cancelar(ctx context.Context, v *model.Venta, mensaje string) (bool, error) {
	cancelada := false
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockByIDTx(tx, v.ID)
		if err != nil {
			return noEncontrado(err, "venta", v.ID)
		}
		switch locked.Estado {
		case model.VentaCancelada:
			return nil
		case model.VentaPagada:
			return fmt.Errorf("venta %d ya fue pagada: %w", v.ID, ErrTransicionInvalida)
		}

		if err := s.repo.UpdateEstadoTx(tx, v.ID, model.VentaCancelada); err != nil {
			return err
		}
		if p := locked.UltimoPago(); p != nil {
			if err := s.repo.UpdatePagoEstadoTx(tx, p.ID, model.PagoRechazado); err != nil {
				return err
			}
		}
		if err := s.stock.LiberarTx(tx, lineasDeDetalles(locked.MicroempresaID, locked.Detalles, v)); err != nil {
			return err
		}
		cancelada = true
		return emitirTx(tx, s.outbox, locked.MicroempresaID, model.EventoVentaCancelada, ptrUint(v.ID), mensaje,
			map[string]any{"venta_id": v.ID, "total": locked.Total.StringFixed(2)})
	})
	return cancelada, err
}

func (s *ventaService) ExpirarPendientes(ctx context.Context, antes time.Time) (int, error) {
	pendientes, err := s.repo.ListPendientesAntes(ctx, antes, expiracionLoteMax)
	if err != nil {
		return 0, err
	}
	n := 0
	var errs []error
	for i := range pendientes {
		v, err := s.repo.FindByID(ctx, pendientes[i].ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cancelada, err := s.cancelar(ctx, v, fmt.Sprintf("Venta online #%d cancelada por falta de pago", v.ID))
		if err != nil {
			errs = append(errs, fmt.Errorf("venta %d: %w", v.ID, err))
			continue
		}
		if cancelada {
			n++
			metrics.PagosResueltos.WithLabelValues(resultadoExpirado).Inc()
		}
	}
	return n, errors.Join(errs...)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, alc Alcance, id uint) (*dto.VentaResponse, error) {
	v, err := s.ventaEnAlcance(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, alc Alcance, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	ventas, total, err := s.repo.List(ctx, mid, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, len(ventas))
	for i := range ventas {
		data[i] = *ventaToResponse(&ventas[i])
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ventaService) ComprobantePDF(ctx context.Context, alc Alcance, id uint) ([]byte, error) {
	v, err := s.ventaEnAlcance(ctx, alc, id)
	if err != nil {
		return nil, err
	}
	m, err := s.microempresaRepo.FindByID(ctx, v.MicroempresaID)
	if err != nil {
		return nil, noEncontrado(err, "microempresa", v.MicroempresaID)
	}
	return infra.GenerarComprobanteVentaPDF(v, m)
}

// recargar re-reads the sale after commit so the response carries product
// names and the final payment states. If the read fails the in-memory copy
// is returned.
func (s *ventaService) recargar(ctx context.Context, v *model.Venta) (*dto.VentaResponse, error) {
	fresh, err := s.repo.FindByID(ctx, v.ID)
	if err != nil {
		return ventaToResponse(v), nil
	}
	return ventaToResponse(fresh), nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:             v.ID,
		MicroempresaID: v.MicroempresaID,
		ClienteID:      v.ClienteID,
		UsuarioID:      v.UsuarioID,
		Fecha:          v.Fecha,
		Total:          v.Total,
		Estado:         v.Estado,
		Tipo:           v.Tipo,
		Detalles:       make([]dto.DetalleVentaResponse, len(v.Detalles)),
		Pagos:          make([]dto.PagoVentaResponse, len(v.Pagos)),
	}
	if v.Cliente != nil {
		resp.Cliente = v.Cliente.Nombre
	}
	for i, d := range v.Detalles {
		nombre := ""
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		resp.Detalles[i] = dto.DetalleVentaResponse{
			ProductoID:     d.ProductoID,
			Producto:       nombre,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		}
	}
	for i, p := range v.Pagos {
		resp.Pagos[i] = dto.PagoVentaResponse{
			ID:             p.ID,
			Metodo:         p.Metodo,
			ComprobanteURL: p.ComprobanteURL,
			Estado:         p.Estado,
			Fecha:          p.Fecha,
		}
	}
	return resp
}
