package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/metrics"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"gorm.io/gorm"
)

// ProductoRef is the minimum a stock mutation needs to know about a product.
type ProductoRef struct {
	ID             uint
	MicroempresaID uint
	Nombre         string
}

func refProducto(p *model.Producto) ProductoRef {
	return ProductoRef{ID: p.ID, MicroempresaID: p.MicroempresaID, Nombre: p.Nombre}
}

// LineaStock is a quantity of one product, as requested by a sale line or
// supplied by a purchase detail.
type LineaStock struct {
	ProductoRef
	Cantidad int
}

// MovimientoInfo describes the ledger row written for an adjustment.
type MovimientoInfo struct {
	Tipo         string
	Motivo       string
	ReferenciaID *uint
}

// StockService owns every mutation of Stock rows.
// The *Tx methods run inside a caller's transaction and never commit.
type StockService interface {
	// AjustarTx adds delta to on-hand quantity, clamping at zero, and writes
	// the ledger row plus any low-stock event.
	AjustarTx(tx *gorm.DB, p ProductoRef, delta int, info MovimientoInfo) (*model.Stock, error)
	// VerificarDisponibleTx locks every stock row involved and fails with
	// *StockInsuficienteError listing all short lines.
	VerificarDisponibleTx(tx *gorm.DB, lineas []LineaStock) error
	ReservarTx(tx *gorm.DB, lineas []LineaStock) error
	LiberarTx(tx *gorm.DB, lineas []LineaStock) error
	// ConsumirReservaTx turns a reservation into a real decrement.
	ConsumirReservaTx(tx *gorm.DB, lineas []LineaStock, info MovimientoInfo) error
	CrearRegistroTx(tx *gorm.DB, p ProductoRef, stockMinimo int) error

	AjustarManual(ctx context.Context, alc Alcance, productoID uint, req dto.AjusteStockRequest) (*dto.StockResponse, error)
	ConfigurarStock(ctx context.Context, alc Alcance, productoID uint, req dto.ConfigurarStockRequest) (*dto.StockResponse, error)
	RegistrarStockInicial(ctx context.Context, alc Alcance, productoID uint, req dto.StockInicialRequest) (*dto.StockResponse, error)
	Obtener(ctx context.Context, alc Alcance, productoID uint) (*dto.StockResponse, error)
	Listar(ctx context.Context, alc Alcance, filter dto.StockFilter) ([]dto.StockResponse, error)
	ListarMovimientos(ctx context.Context, alc Alcance, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
}

type stockService struct {
	repo         repository.StockRepository
	movRepo      repository.MovimientoStockRepository
	productoRepo repository.ProductoRepository
	outbox       repository.OutboxRepository
}

func NewStockService(
	repo repository.StockRepository,
	movRepo repository.MovimientoStockRepository,
	productoRepo repository.ProductoRepository,
	outbox repository.OutboxRepository,
) StockService {
	return &stockService{repo: repo, movRepo: movRepo, productoRepo: productoRepo, outbox: outbox}
}

// ── Transactional primitives ─────────────────────────────────────────────────

// agrupar merges lines of the same product and orders them by product id.
func agrupar(lineas []LineaStock) []LineaStock {
	idx := make(map[uint]int, len(lineas))
	var out []LineaStock
	for _, l := range lineas {
		if i, ok := idx[l.ID]; ok {
			out[i].Cantidad += l.Cantidad
			continue
		}
		idx[l.ID] = len(out)
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *stockService) bloquear(tx *gorm.DB, lineas []LineaStock) (map[uint]*model.Stock, error) {
	ids := make([]uint, len(lineas))
	for i, l := range lineas {
		ids[i] = l.ID
	}
	rows, err := s.repo.LockByProductoIDs(tx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]*model.Stock, len(rows))
	for i := range rows {
		out[rows[i].ProductoID] = &rows[i]
	}
	return out, nil
}

func (s *stockService) verificar(lineas []LineaStock, stocks map[uint]*model.Stock) error {
	var faltantes []FaltanteStock
	for _, l := range lineas {
		disponible := 0
		if st, ok := stocks[l.ID]; ok {
			disponible = st.Disponible()
		}
		if l.Cantidad > disponible {
			faltantes = append(faltantes, FaltanteStock{
				ProductoID: l.ID,
				Producto:   l.Nombre,
				Solicitado: l.Cantidad,
				Disponible: disponible,
			})
		}
	}
	if len(faltantes) > 0 {
		metrics.StockInsuficiente.Inc()
		return &StockInsuficienteError{Faltantes: faltantes}
	}
	return nil
}

func (s *stockService) VerificarDisponibleTx(tx *gorm.DB, lineas []LineaStock) error {
	agrupadas := agrupar(lineas)
	stocks, err := s.bloquear(tx, agrupadas)
	if err != nil {
		return err
	}
	return s.verificar(agrupadas, stocks)
}

func (s *stockService) ReservarTx(tx *gorm.DB, lineas []LineaStock) error {
	agrupadas := agrupar(lineas)
	stocks, err := s.bloquear(tx, agrupadas)
	if err != nil {
		return err
	}
	if err := s.verificar(agrupadas, stocks); err != nil {
		return err
	}
	now := time.Now()
	for _, l := range agrupadas {
		st := stocks[l.ID]
		st.Reservado += l.Cantidad
		st.UltimaActualizacion = now
		if err := s.repo.SaveTx(tx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockService) LiberarTx(tx *gorm.DB, lineas []LineaStock) error {
	agrupadas := agrupar(lineas)
	stocks, err := s.bloquear(tx, agrupadas)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, l := range agrupadas {
		st, ok := stocks[l.ID]
		if !ok {
			continue
		}
		st.Reservado -= l.Cantidad
		if st.Reservado < 0 {
			st.Reservado = 0
		}
		st.UltimaActualizacion = now
		if err := s.repo.SaveTx(tx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockService) ConsumirReservaTx(tx *gorm.DB, lineas []LineaStock, info MovimientoInfo) error {
	agrupadas := agrupar(lineas)
	stocks, err := s.bloquear(tx, agrupadas)
	if err != nil {
		return err
	}
	for _, l := range agrupadas {
		st, ok := stocks[l.ID]
		if !ok {
			st = &model.Stock{ProductoID: l.ID, MicroempresaID: l.MicroempresaID}
			if err := s.repo.CreateTx(tx, st); err != nil {
				return err
			}
		}
		st.Reservado -= l.Cantidad
		if st.Reservado < 0 {
			st.Reservado = 0
		}
		if err := s.aplicarDelta(tx, st, l.ProductoRef, -l.Cantidad, info); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockService) AjustarTx(tx *gorm.DB, p ProductoRef, delta int, info MovimientoInfo) (*model.Stock, error) {
	rows, err := s.repo.LockByProductoIDs(tx, []uint{p.ID})
	if err != nil {
		return nil, err
	}
	var st *model.Stock
	if len(rows) == 0 {
		st = &model.Stock{ProductoID: p.ID, MicroempresaID: p.MicroempresaID}
		if err := s.repo.CreateTx(tx, st); err != nil {
			return nil, err
		}
	} else {
		st = &rows[0]
	}
	if err := s.aplicarDelta(tx, st, p, delta, info); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *stockService) CrearRegistroTx(tx *gorm.DB, p ProductoRef, stockMinimo int) error {
	return s.repo.CreateTx(tx, &model.Stock{
		ProductoID:          p.ID,
		MicroempresaID:      p.MicroempresaID,
		StockMinimo:         stockMinimo,
		UltimaActualizacion: time.Now(),
	})
}

// aplicarDelta is the only place on-hand quantity changes. The caller holds
// the row lock.
func (s *stockService) aplicarDelta(tx *gorm.DB, st *model.Stock, p ProductoRef, delta int, info MovimientoInfo) error {
	anterior := st.Cantidad
	nuevo := anterior + delta
	if nuevo < 0 {
		nuevo = 0
	}
	st.Cantidad = nuevo
	if st.Reservado > st.Cantidad {
		st.Reservado = st.Cantidad
	}
	st.UltimaActualizacion = time.Now()
	if err := s.repo.SaveTx(tx, st); err != nil {
		return err
	}

	mov := &model.MovimientoStock{
		ProductoID:     p.ID,
		MicroempresaID: st.MicroempresaID,
		Tipo:           info.Tipo,
		Cantidad:       nuevo - anterior,
		StockAnterior:  anterior,
		StockNuevo:     nuevo,
		Motivo:         info.Motivo,
		ReferenciaID:   info.ReferenciaID,
	}
	if err := s.movRepo.CreateTx(tx, mov); err != nil {
		return err
	}
	return s.alertaTx(tx, st, p)
}

func (s *stockService) alertaTx(tx *gorm.DB, st *model.Stock, p ProductoRef) error {
	datos := map[string]any{
		"producto_id":  p.ID,
		"producto":     p.Nombre,
		"cantidad":     st.Cantidad,
		"stock_minimo": st.StockMinimo,
	}
	switch {
	case st.Cantidad == 0:
		return emitirTx(tx, s.outbox, st.MicroempresaID, model.EventoStockAgotado, ptrUint(p.ID),
			fmt.Sprintf("Stock agotado: %s", p.Nombre), datos)
	case st.BajoMinimo():
		return emitirTx(tx, s.outbox, st.MicroempresaID, model.EventoStockBajo, ptrUint(p.ID),
			fmt.Sprintf("Stock bajo: %s (%d unidades, minimo %d)", p.Nombre, st.Cantidad, st.StockMinimo), datos)
	}
	return nil
}

// ── Management operations ────────────────────────────────────────────────────

func (s *stockService) productoEnAlcance(ctx context.Context, alc Alcance, productoID uint) (*model.Producto, error) {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "producto", productoID)
	}
	if err := alc.verificar(p.MicroempresaID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *stockService) AjustarManual(ctx context.Context, alc Alcance, productoID uint, req dto.AjusteStockRequest) (*dto.StockResponse, error) {
	p, err := s.productoEnAlcance(ctx, alc, productoID)
	if err != nil {
		return nil, err
	}
	var st *model.Stock
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		st, err = s.AjustarTx(tx, refProducto(p), req.Delta, MovimientoInfo{
			Tipo:   model.MovimientoAjusteManual,
			Motivo: req.Motivo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return stockToResponse(st, p.Nombre), nil
}

func (s *stockService) ConfigurarStock(ctx context.Context, alc Alcance, productoID uint, req dto.ConfigurarStockRequest) (*dto.StockResponse, error) {
	p, err := s.productoEnAlcance(ctx, alc, productoID)
	if err != nil {
		return nil, err
	}
	var st *model.Stock
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.LockByProductoIDs(tx, []uint{p.ID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			st = &model.Stock{
				ProductoID:          p.ID,
				MicroempresaID:      p.MicroempresaID,
				StockMinimo:         req.StockMinimo,
				UltimaActualizacion: time.Now(),
			}
			return s.repo.CreateTx(tx, st)
		}
		st = &rows[0]
		st.StockMinimo = req.StockMinimo
		st.UltimaActualizacion = time.Now()
		return s.repo.SaveTx(tx, st)
	})
	if err != nil {
		return nil, err
	}
	return stockToResponse(st, p.Nombre), nil
}

func (s *stockService) RegistrarStockInicial(ctx context.Context, alc Alcance, productoID uint, req dto.StockInicialRequest) (*dto.StockResponse, error) {
	p, err := s.productoEnAlcance(ctx, alc, productoID)
	if err != nil {
		return nil, err
	}
	var st *model.Stock
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.LockByProductoIDs(tx, []uint{p.ID})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			st = &model.Stock{ProductoID: p.ID, MicroempresaID: p.MicroempresaID}
			if err := s.repo.CreateTx(tx, st); err != nil {
				return err
			}
		} else {
			st = &rows[0]
		}
		if st.Cantidad != 0 {
			return fmt.Errorf("el producto %s ya tiene stock registrado: %w", p.Nombre, ErrConflicto)
		}
		return s.aplicarDelta(tx, st, refProducto(p), req.Cantidad, MovimientoInfo{
			Tipo:   model.MovimientoStockInicial,
			Motivo: "Stock inicial",
		})
	})
	if err != nil {
		return nil, err
	}
	return stockToResponse(st, p.Nombre), nil
}

func (s *stockService) Obtener(ctx context.Context, alc Alcance, productoID uint) (*dto.StockResponse, error) {
	p, err := s.productoEnAlcance(ctx, alc, productoID)
	if err != nil {
		return nil, err
	}
	st, err := s.repo.FindByProductoID(ctx, productoID)
	if err != nil {
		return nil, noEncontrado(err, "stock del producto", productoID)
	}
	return stockToResponse(st, p.Nombre), nil
}

func (s *stockService) Listar(ctx context.Context, alc Alcance, filter dto.StockFilter) ([]dto.StockResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, mid, filter.SoloBajoMinimo)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, len(rows))
	for i := range rows {
		nombre := ""
		if rows[i].Producto != nil {
			nombre = rows[i].Producto.Nombre
		}
		out[i] = *stockToResponse(&rows[i], nombre)
	}
	return out, nil
}

func (s *stockService) ListarMovimientos(ctx context.Context, alc Alcance, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	mid, err := alc.empresa()
	if err != nil {
		return nil, err
	}
	movs, total, err := s.movRepo.List(ctx, mid, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoStockResponse, len(movs))
	for i, m := range movs {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		data[i] = dto.MovimientoStockResponse{
			ID:            m.ID,
			ProductoID:    m.ProductoID,
			Producto:      nombre,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  m.ReferenciaID,
			CreatedAt:     m.CreatedAt,
		}
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func stockToResponse(st *model.Stock, producto string) *dto.StockResponse {
	return &dto.StockResponse{
		ProductoID:          st.ProductoID,
		Producto:            producto,
		Cantidad:            st.Cantidad,
		Reservado:           st.Reservado,
		Disponible:          st.Disponible(),
		StockMinimo:         st.StockMinimo,
		BajoMinimo:          st.BajoMinimo(),
		UltimaActualizacion: st.UltimaActualizacion,
	}
}
