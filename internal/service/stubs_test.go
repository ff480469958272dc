package service_test

import (
	"context"
	"sort"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The stubs below keep rows in memory. Services call runTx with a nil DB in
// this mode, so every *Tx method receives a nil *gorm.DB.

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uint]*model.Producto
	nextID    uint
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uint]*model.Producto)}
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) FindByIDs(_ context.Context, ids []uint) ([]model.Producto, error) {
	var out []model.Producto
	for _, id := range ids {
		if p, ok := r.productos[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductoRepo) List(_ context.Context, mid uint, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.MicroempresaID == mid {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListCatalogo(ctx context.Context, mid uint) ([]model.Producto, error) {
	out, _, err := r.List(ctx, mid, dto.ProductoFilter{})
	return out, err
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) UpdateTx(_ *gorm.DB, p *model.Producto) error {
	return r.Update(context.Background(), p)
}

func (r *stubProductoRepo) UpdateCostoTx(_ *gorm.DB, id uint, costo decimal.Decimal) error {
	if p, ok := r.productos[id]; ok {
		c := costo
		p.CostoCompra = &c
	}
	return nil
}

func (r *stubProductoRepo) CountActivos(_ context.Context, mid uint) (int64, error) {
	var n int64
	for _, p := range r.productos {
		if p.MicroempresaID == mid && p.Activo {
			n++
		}
	}
	return n, nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Stock ─────────────────────────────────────────────────────────────────────

type stubStockRepo struct {
	rows     map[uint]*model.Stock // by producto id
	nextID   uint
	bloqueos []uint // producto ids in the order they were locked
}

func newStubStockRepo() *stubStockRepo {
	return &stubStockRepo{rows: make(map[uint]*model.Stock)}
}

func (r *stubStockRepo) CreateTx(_ *gorm.DB, s *model.Stock) error {
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.rows[s.ProductoID] = &cp
	return nil
}

func (r *stubStockRepo) FindByProductoID(_ context.Context, productoID uint) (*model.Stock, error) {
	s, ok := r.rows[productoID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubStockRepo) LockByProductoIDs(_ *gorm.DB, ids []uint) ([]model.Stock, error) {
	var out []model.Stock
	for _, id := range ids {
		if s, ok := r.rows[id]; ok {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductoID < out[j].ProductoID })
	for _, s := range out {
		r.bloqueos = append(r.bloqueos, s.ProductoID)
	}
	return out, nil
}

func (r *stubStockRepo) SaveTx(_ *gorm.DB, s *model.Stock) error {
	cp := *s
	r.rows[s.ProductoID] = &cp
	return nil
}

func (r *stubStockRepo) List(_ context.Context, mid uint, soloBajoMinimo bool) ([]model.Stock, error) {
	var out []model.Stock
	for _, s := range r.rows {
		if s.MicroempresaID == mid && (!soloBajoMinimo || s.BajoMinimo()) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStockRepo) CountBajoMinimo(ctx context.Context, mid uint) (int64, error) {
	rows, _ := r.List(ctx, mid, true)
	return int64(len(rows)), nil
}

func (r *stubStockRepo) DB() *gorm.DB { return nil }

var _ repository.StockRepository = (*stubStockRepo)(nil)

type stubMovimientoRepo struct {
	movs []model.MovimientoStock
}

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	m.ID = uint(len(r.movs) + 1)
	r.movs = append(r.movs, *m)
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, mid uint, _ dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.movs {
		if m.MicroempresaID == mid {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

// ── Outbox ────────────────────────────────────────────────────────────────────

type stubOutboxRepo struct {
	eventos []model.EventoOutbox
}

func (r *stubOutboxRepo) CreateTx(_ *gorm.DB, e *model.EventoOutbox) error {
	e.ID = uint(len(r.eventos) + 1)
	r.eventos = append(r.eventos, *e)
	return nil
}

func (r *stubOutboxRepo) ClaimPendientesTx(_ *gorm.DB, _ time.Time, _ int) ([]model.EventoOutbox, error) {
	return nil, nil
}

func (r *stubOutboxRepo) SaveTx(_ *gorm.DB, _ *model.EventoOutbox) error { return nil }

func (r *stubOutboxRepo) CountByEstado(_ context.Context, _ string) (int64, error) {
	return int64(len(r.eventos)), nil
}

func (r *stubOutboxRepo) DB() *gorm.DB { return nil }

var _ repository.OutboxRepository = (*stubOutboxRepo)(nil)

// tipos returns the event types emitted so far, in order.
func (r *stubOutboxRepo) tipos() []string {
	out := make([]string, len(r.eventos))
	for i, e := range r.eventos {
		out[i] = e.Tipo
	}
	return out
}

func (r *stubOutboxRepo) count(tipo string) int {
	n := 0
	for _, e := range r.eventos {
		if e.Tipo == tipo {
			n++
		}
	}
	return n
}

// ── Microempresas / Usuarios ─────────────────────────────────────────────────

type stubMicroempresaRepo struct {
	items  map[uint]*model.Microempresa
	nextID uint
}

func newStubMicroempresaRepo() *stubMicroempresaRepo {
	return &stubMicroempresaRepo{items: make(map[uint]*model.Microempresa)}
}

func (r *stubMicroempresaRepo) CreateTx(_ *gorm.DB, m *model.Microempresa) error {
	r.nextID++
	m.ID = r.nextID
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *stubMicroempresaRepo) FindByID(_ context.Context, id uint) (*model.Microempresa, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMicroempresaRepo) ExistsNIT(_ context.Context, nit string) (bool, error) {
	for _, m := range r.items {
		if m.NIT == nit {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMicroempresaRepo) List(_ context.Context) ([]model.Microempresa, error) {
	var out []model.Microempresa
	for _, m := range r.items {
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMicroempresaRepo) Update(_ context.Context, m *model.Microempresa) error {
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *stubMicroempresaRepo) DB() *gorm.DB { return nil }

var _ repository.MicroempresaRepository = (*stubMicroempresaRepo)(nil)

type stubUsuarioRepo struct {
	users  map[uint]*model.Usuario
	nextID uint
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uint]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) CreateTx(_ *gorm.DB, u *model.Usuario) error {
	return r.Create(context.Background(), u)
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uint) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) ExistsEmail(_ context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(context.Background(), email)
	return err == nil, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, mid *uint) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if mid == nil || (u.MicroempresaID != nil && *u.MicroempresaID == *mid) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAdminsActivos(_ context.Context, mid uint) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if u.Rol == model.RolAdmin && u.Activo && u.MicroempresaID != nil && *u.MicroempresaID == mid {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) CountActivosPorRol(_ context.Context, mid uint, rol string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Rol == rol && u.Activo && u.MicroempresaID != nil && *u.MicroempresaID == mid {
			n++
		}
	}
	return n, nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uint, activo bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Clientes ─────────────────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uint]*model.Cliente
	nextID   uint
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uint]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) CreateTx(_ *gorm.DB, c *model.Cliente) error {
	return r.Create(context.Background(), c)
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uint) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByTelefonoTx(_ *gorm.DB, mid uint, tel string) (*model.Cliente, error) {
	for _, c := range r.clientes {
		if c.MicroempresaID == mid && c.Telefono == tel {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) ExistsTelefono(_ context.Context, mid uint, tel string, exceptID uint) (bool, error) {
	for _, c := range r.clientes {
		if c.MicroempresaID == mid && c.Telefono == tel && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubClienteRepo) List(_ context.Context, mid uint, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.MicroempresaID == mid {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// ── Ventas ───────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas     map[uint]*model.Venta
	clientes   *stubClienteRepo
	nextID     uint
	nextPagoID uint
}

func newStubVentaRepo(clientes *stubClienteRepo) *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uint]*model.Venta), clientes: clientes}
}

func copiarVenta(v *model.Venta) *model.Venta {
	cp := *v
	cp.Detalles = append([]model.DetalleVenta(nil), v.Detalles...)
	cp.Pagos = append([]model.PagoVenta(nil), v.Pagos...)
	return &cp
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	r.nextID++
	v.ID = r.nextID
	for i := range v.Detalles {
		v.Detalles[i].ID = uint(i + 1)
		v.Detalles[i].VentaID = v.ID
	}
	for i := range v.Pagos {
		r.nextPagoID++
		v.Pagos[i].ID = r.nextPagoID
		v.Pagos[i].VentaID = v.ID
	}
	r.ventas[v.ID] = copiarVenta(v)
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uint) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := copiarVenta(v)
	if v.ClienteID != nil && r.clientes != nil {
		if c, ok := r.clientes.clientes[*v.ClienteID]; ok {
			cp := *c
			out.Cliente = &cp
		}
	}
	return out, nil
}

func (r *stubVentaRepo) LockByIDTx(_ *gorm.DB, id uint) (*model.Venta, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uint, estado string) error {
	v, ok := r.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) CreatePagoTx(_ *gorm.DB, p *model.PagoVenta) error {
	v, ok := r.ventas[p.VentaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.nextPagoID++
	p.ID = r.nextPagoID
	v.Pagos = append(v.Pagos, *p)
	return nil
}

func (r *stubVentaRepo) UpdatePagoEstadoTx(_ *gorm.DB, pagoID uint, estado string) error {
	for _, v := range r.ventas {
		for i := range v.Pagos {
			if v.Pagos[i].ID == pagoID {
				v.Pagos[i].Estado = estado
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) List(_ context.Context, mid uint, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.MicroempresaID == mid {
			out = append(out, *copiarVenta(v))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ListPendientesAntes(_ context.Context, antes time.Time, limit int) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.Tipo == model.VentaOnline && v.Estado == model.VentaPendientePago && v.Fecha.Before(antes) {
			out = append(out, *copiarVenta(v))
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Historial de precios ─────────────────────────────────────────────────────

type stubHistorialRepo struct {
	rows []model.HistorialPrecio
}

func (r *stubHistorialRepo) CreateTx(_ *gorm.DB, h *model.HistorialPrecio) error {
	h.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistorialRepo) ListByProducto(_ context.Context, productoID uint, _, _ int) ([]model.HistorialPrecio, int64, error) {
	var out []model.HistorialPrecio
	for _, h := range r.rows {
		if h.ProductoID == productoID {
			out = append(out, h)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.HistorialPrecioRepository = (*stubHistorialRepo)(nil)

// ── Planes y suscripciones ───────────────────────────────────────────────────

type stubPlanRepo struct {
	planes        map[uint]*model.Plan
	nextID        uint
	suscripciones *stubSuscripcionRepo
}

func newStubPlanRepo() *stubPlanRepo {
	return &stubPlanRepo{planes: make(map[uint]*model.Plan)}
}

func (r *stubPlanRepo) Create(_ context.Context, p *model.Plan) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.planes[p.ID] = &cp
	return nil
}

func (r *stubPlanRepo) FindByID(_ context.Context, id uint) (*model.Plan, error) {
	p, ok := r.planes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPlanRepo) ExistsNombre(_ context.Context, nombre string, exceptID uint) (bool, error) {
	for _, p := range r.planes {
		if p.Nombre == nombre && p.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPlanRepo) List(_ context.Context, activo *bool) ([]model.Plan, error) {
	var out []model.Plan
	for _, p := range r.planes {
		if activo == nil || p.Activo == *activo {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPlanRepo) Update(_ context.Context, p *model.Plan) error {
	if _, ok := r.planes[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.planes[p.ID] = &cp
	return nil
}

func (r *stubPlanRepo) Delete(_ context.Context, id uint) error {
	if _, ok := r.planes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.planes, id)
	return nil
}

func (r *stubPlanRepo) CountSuscripciones(_ context.Context, planID uint) (int64, error) {
	if r.suscripciones == nil {
		return 0, nil
	}
	var n int64
	for _, s := range r.suscripciones.subs {
		if s.PlanID == planID {
			n++
		}
	}
	return n, nil
}

var _ repository.PlanRepository = (*stubPlanRepo)(nil)

type stubSuscripcionRepo struct {
	subs   map[uint]*model.Suscripcion
	nextID uint
	planes *stubPlanRepo
}

func newStubSuscripcionRepo(planes *stubPlanRepo) *stubSuscripcionRepo {
	r := &stubSuscripcionRepo{subs: make(map[uint]*model.Suscripcion), planes: planes}
	planes.suscripciones = r
	return r
}

func (r *stubSuscripcionRepo) conPlan(s *model.Suscripcion) *model.Suscripcion {
	cp := *s
	if p, err := r.planes.FindByID(context.Background(), s.PlanID); err == nil {
		cp.Plan = p
	}
	return &cp
}

func (r *stubSuscripcionRepo) CreateTx(_ *gorm.DB, s *model.Suscripcion) error {
	r.nextID++
	s.ID = r.nextID
	cp := *s
	cp.Plan = nil
	r.subs[s.ID] = &cp
	return nil
}

func (r *stubSuscripcionRepo) FindByID(_ context.Context, id uint) (*model.Suscripcion, error) {
	s, ok := r.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.conPlan(s), nil
}

func (r *stubSuscripcionRepo) List(_ context.Context, mid *uint) ([]model.Suscripcion, error) {
	var out []model.Suscripcion
	for _, s := range r.subs {
		if mid == nil || s.MicroempresaID == *mid {
			out = append(out, *r.conPlan(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubSuscripcionRepo) Update(_ context.Context, s *model.Suscripcion) error {
	if _, ok := r.subs[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Plan = nil
	r.subs[s.ID] = &cp
	return nil
}

func (r *stubSuscripcionRepo) DesactivarTx(_ *gorm.DB, mid uint) error {
	for _, s := range r.subs {
		if s.MicroempresaID == mid {
			s.Activa = false
		}
	}
	return nil
}

func (r *stubSuscripcionRepo) FindVigente(_ context.Context, mid uint, now time.Time) (*model.Suscripcion, error) {
	for _, s := range r.subs {
		if s.MicroempresaID == mid && s.Vigente(now) {
			return r.conPlan(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSuscripcionRepo) DB() *gorm.DB { return nil }

var _ repository.SuscripcionRepository = (*stubSuscripcionRepo)(nil)

// ── Helpers ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
