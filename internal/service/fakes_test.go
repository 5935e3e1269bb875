package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"cajaflow/internal/model"
	"cajaflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. All DB() methods return
// nil, which makes runTx/runSavepoint execute callbacks directly without
// a real transaction.

// ── fakeCajaRepo ─────────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	cajas map[uuid.UUID]*model.Caja
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{cajas: make(map[uuid.UUID]*model.Caja)}
}

func (r *fakeCajaRepo) Create(_ context.Context, c *model.Caja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.cajas[c.ID] = c
	return nil
}

func (r *fakeCajaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Caja, error) {
	c, ok := r.cajas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCajaRepo) List(_ context.Context) ([]model.Caja, error) {
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *fakeCajaRepo) ListActivas(_ context.Context) ([]model.Caja, error) {
	out := make([]model.Caja, 0, len(r.cajas))
	for _, c := range r.cajas {
		if c.Activa {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

func (r *fakeCajaRepo) SetActiva(_ context.Context, id uuid.UUID, activa bool) error {
	if c, ok := r.cajas[id]; ok {
		c.Activa = activa
	}
	return nil
}

// ── fakeCierreRepo ───────────────────────────────────────────────────────────

type fakeCierreRepo struct {
	cierres    map[uuid.UUID]*model.CierreCaja
	revisiones []*model.RevisionCierre
}

func newFakeCierreRepo() *fakeCierreRepo {
	return &fakeCierreRepo{cierres: make(map[uuid.UUID]*model.CierreCaja)}
}

func (r *fakeCierreRepo) DB() *gorm.DB { return nil }

func (r *fakeCierreRepo) CreateTx(_ *gorm.DB, c *model.CierreCaja) error {
	for _, existente := range r.cierres {
		if existente.AperturaID == c.AperturaID {
			return repository.ErrDuplicado
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.cierres[c.ID] = c
	return nil
}

func (r *fakeCierreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	return r.find(id)
}

func (r *fakeCierreRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.CierreCaja, error) {
	return r.find(id)
}

func (r *fakeCierreRepo) find(id uuid.UUID) (*model.CierreCaja, error) {
	c, ok := r.cierres[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (r *fakeCierreRepo) UpdateTx(_ *gorm.DB, c *model.CierreCaja) error {
	copia := *c
	r.cierres[c.ID] = &copia
	return nil
}

func (r *fakeCierreRepo) ListPorEstado(_ context.Context, estado string, page, limit int) ([]model.CierreCaja, int64, error) {
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.Estado == estado {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FechaCierre.After(out[j].FechaCierre) })
	total := int64(len(out))
	inicio := (page - 1) * limit
	if inicio > len(out) {
		inicio = len(out)
	}
	fin := inicio + limit
	if fin > len(out) {
		fin = len(out)
	}
	return out[inicio:fin], total, nil
}

func (r *fakeCierreRepo) CreateRevisionTx(_ *gorm.DB, rev *model.RevisionCierre) error {
	if rev.ID == uuid.Nil {
		rev.ID = uuid.New()
	}
	rev.CreatedAt = time.Now()
	r.revisiones = append(r.revisiones, rev)
	return nil
}

func (r *fakeCierreRepo) ListRevisiones(_ context.Context, cierreID uuid.UUID) ([]model.RevisionCierre, error) {
	var out []model.RevisionCierre
	for _, rev := range r.revisiones {
		if rev.CierreID == cierreID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

// ── fakeAperturaRepo ─────────────────────────────────────────────────────────

type fakeAperturaRepo struct {
	aperturas map[uuid.UUID]*model.Apertura
	cierres   *fakeCierreRepo
}

func newFakeAperturaRepo(cierres *fakeCierreRepo) *fakeAperturaRepo {
	return &fakeAperturaRepo{
		aperturas: make(map[uuid.UUID]*model.Apertura),
		cierres:   cierres,
	}
}

func (r *fakeAperturaRepo) DB() *gorm.DB { return nil }

func (r *fakeAperturaRepo) CreateTx(_ *gorm.DB, a *model.Apertura) error {
	for _, existente := range r.aperturas {
		if existente.UsuarioID == a.UsuarioID && existente.Estado == model.AperturaAbierta {
			return repository.ErrDuplicado
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.aperturas[a.ID] = a
	return nil
}

func (r *fakeAperturaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Apertura, error) {
	a, ok := r.aperturas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *a
	copia.Cierre = r.cierrePorApertura(id)
	return &copia, nil
}

func (r *fakeAperturaRepo) cierrePorApertura(aperturaID uuid.UUID) *model.CierreCaja {
	if r.cierres == nil {
		return nil
	}
	for _, c := range r.cierres.cierres {
		if c.AperturaID == aperturaID {
			copia := *c
			return &copia
		}
	}
	return nil
}

func (r *fakeAperturaRepo) FindAbiertaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.Apertura, error) {
	var encontrada *model.Apertura
	for _, a := range r.aperturas {
		if a.UsuarioID == usuarioID && a.Estado == model.AperturaAbierta {
			if encontrada == nil || a.OpenedAt.After(encontrada.OpenedAt) {
				encontrada = a
			}
		}
	}
	if encontrada == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *encontrada
	return &copia, nil
}

func (r *fakeAperturaRepo) ListAbiertasPorCajaTx(_ *gorm.DB, cajaID uuid.UUID) ([]model.Apertura, error) {
	var out []model.Apertura
	for _, a := range r.aperturas {
		if a.CajaID == cajaID && a.Estado == model.AperturaAbierta {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.Before(out[j].OpenedAt) })
	return out, nil
}

func (r *fakeAperturaRepo) MarcarCerradaTx(_ *gorm.DB, id uuid.UUID, closedAt time.Time) (bool, error) {
	a, ok := r.aperturas[id]
	if !ok || a.Estado != model.AperturaAbierta {
		return false, nil
	}
	a.Estado = model.AperturaCerrada
	t := closedAt
	a.ClosedAt = &t
	return true, nil
}

func (r *fakeAperturaRepo) ListCerradas(_ context.Context, page, limit int) ([]model.Apertura, int64, error) {
	var out []model.Apertura
	for _, a := range r.aperturas {
		if a.Estado == model.AperturaCerrada {
			copia := *a
			copia.Cierre = r.cierrePorApertura(a.ID)
			out = append(out, copia)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClosedAt != nil && out[j].ClosedAt != nil && out[i].ClosedAt.After(*out[j].ClosedAt)
	})
	total := int64(len(out))
	inicio := (page - 1) * limit
	if inicio > len(out) {
		inicio = len(out)
	}
	fin := inicio + limit
	if fin > len(out) {
		fin = len(out)
	}
	return out[inicio:fin], total, nil
}

// ── fakeMovimientoRepo ───────────────────────────────────────────────────────

type fakeMovimientoRepo struct {
	movimientos []*model.MovimientoCaja
	// errSumarCaja makes every sum over this caja fail, to exercise the
	// per-caja error isolation of the sweep.
	errSumarCaja uuid.UUID
}

func newFakeMovimientoRepo() *fakeMovimientoRepo { return &fakeMovimientoRepo{} }

func (r *fakeMovimientoRepo) Create(_ context.Context, m *model.MovimientoCaja) error {
	return r.CreateTx(nil, m)
}

func (r *fakeMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoCaja) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *fakeMovimientoRepo) List(_ context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.CajaID == cajaID && m.UsuarioID == usuarioID && enVentana(m.Fecha, desde, hasta) {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *fakeMovimientoRepo) ListPorApertura(_ context.Context, aperturaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var out []model.MovimientoCaja
	for _, m := range r.movimientos {
		if m.AperturaID == aperturaID {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *fakeMovimientoRepo) Sumar(_ context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return r.sumar(cajaID, usuarioID, desde, hasta, false)
}

func (r *fakeMovimientoRepo) SumarOperativos(_ context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return r.sumar(cajaID, usuarioID, desde, hasta, true)
}

func (r *fakeMovimientoRepo) SumarOperativosTx(_ *gorm.DB, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return r.sumar(cajaID, usuarioID, desde, hasta, true)
}

func (r *fakeMovimientoRepo) sumar(cajaID, usuarioID uuid.UUID, desde, hasta time.Time, sinApertura bool) (decimal.Decimal, error) {
	if r.errSumarCaja != uuid.Nil && cajaID == r.errSumarCaja {
		return decimal.Zero, errors.New("falla simulada en la suma")
	}
	total := decimal.Zero
	for _, m := range r.movimientos {
		if m.CajaID != cajaID || m.UsuarioID != usuarioID {
			continue
		}
		if !enVentana(m.Fecha, desde, hasta) {
			continue
		}
		if sinApertura && m.Tipo == model.MovimientoApertura {
			continue
		}
		total = total.Add(m.Monto)
	}
	return total, nil
}

// enVentana applies the half-open window [desde, hasta).
func enVentana(fecha, desde, hasta time.Time) bool {
	return !fecha.Before(desde) && fecha.Before(hasta)
}

// ── fakeAuditoriaRepo ────────────────────────────────────────────────────────

type fakeAuditoriaRepo struct {
	registros []*model.RegistroAuditoria
}

func newFakeAuditoriaRepo() *fakeAuditoriaRepo { return &fakeAuditoriaRepo{} }

func (r *fakeAuditoriaRepo) CreateTx(_ *gorm.DB, reg *model.RegistroAuditoria) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	reg.CreatedAt = time.Now()
	r.registros = append(r.registros, reg)
	return nil
}

func (r *fakeAuditoriaRepo) List(_ context.Context, page, limit int) ([]model.RegistroAuditoria, int64, error) {
	out := make([]model.RegistroAuditoria, 0, len(r.registros))
	for _, reg := range r.registros {
		out = append(out, *reg)
	}
	return out, int64(len(out)), nil
}

// ── fakeNotificador ──────────────────────────────────────────────────────────

type fakeNotificador struct {
	notificados []uuid.UUID
	err         error
}

func (n *fakeNotificador) NotificarCierrePendiente(_ context.Context, cierre *model.CierreCaja) error {
	if n.err != nil {
		return n.err
	}
	n.notificados = append(n.notificados, cierre.ID)
	return nil
}

// ── Test harness ─────────────────────────────────────────────────────────────

type banco struct {
	cajas       *fakeCajaRepo
	aperturas   *fakeAperturaRepo
	movimientos *fakeMovimientoRepo
	cierresRepo *fakeCierreRepo
	auditoria   *fakeAuditoriaRepo
	notificador *fakeNotificador

	aperturaSvc   AperturaService
	movimientoSvc MovimientoService
	cierreSvc     CierreService
	aprobacionSvc AprobacionService
	barridoSvc    BarridoService
}

func newBanco() *banco {
	cierresRepo := newFakeCierreRepo()
	b := &banco{
		cajas:       newFakeCajaRepo(),
		aperturas:   newFakeAperturaRepo(cierresRepo),
		movimientos: newFakeMovimientoRepo(),
		cierresRepo: cierresRepo,
		auditoria:   newFakeAuditoriaRepo(),
		notificador: &fakeNotificador{},
	}
	authz := NewAutorizadorPorRol()
	b.aperturaSvc = NewAperturaService(b.aperturas, b.cajas, b.movimientos, authz)
	b.movimientoSvc = NewMovimientoService(b.movimientos, b.aperturas)
	b.cierreSvc = NewCierreService(b.cierresRepo, b.aperturas, b.movimientos, authz, b.notificador)
	b.aprobacionSvc = NewAprobacionService(b.cierresRepo, b.movimientos, authz, b.notificador)
	b.barridoSvc = NewBarridoService(b.cajas, b.aperturas, b.auditoria, b.cierreSvc, b.aprobacionSvc, authz)
	return b
}

func (b *banco) nuevaCaja(nombre string, activa bool) *model.Caja {
	c := &model.Caja{Nombre: nombre, Activa: activa}
	_ = b.cajas.Create(context.Background(), c)
	return c
}

func actorCajero() Actor {
	return Actor{ID: uuid.New(), Username: "cajero1", Rol: "cajero"}
}

func actorSupervisor() Actor {
	return Actor{ID: uuid.New(), Username: "super1", Rol: "supervisor"}
}

func actorAdmin() Actor {
	return Actor{ID: uuid.New(), Username: "admin1", Rol: "administrador"}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// cargarMovimiento inserts a raw ledger entry with an explicit fecha,
// bypassing the service layer. Monto is stored as given (already signed).
func (b *banco) cargarMovimiento(a *model.Apertura, tipo, monto string, fecha time.Time) {
	_ = b.movimientos.Create(context.Background(), &model.MovimientoCaja{
		CajaID:          a.CajaID,
		UsuarioID:       a.UsuarioID,
		AperturaID:      a.ID,
		Tipo:            tipo,
		Monto:           dec(monto),
		NumeroDocumento: "T-0001",
		Fecha:           fecha,
		Descripcion:     "entrada de prueba",
	})
}
