package repository

import (
	"context"
	"time"

	"cajaflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovimientoRepository interface {
	Create(ctx context.Context, m *model.MovimientoCaja) error
	CreateTx(tx *gorm.DB, m *model.MovimientoCaja) error
	// List returns the entries for caja+usuario within [desde, hasta),
	// ordered by fecha with insertion order as tie-breaker.
	List(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) ([]model.MovimientoCaja, error)
	ListPorApertura(ctx context.Context, aperturaID uuid.UUID) ([]model.MovimientoCaja, error)
	// Sumar totals every entry for caja+usuario within [desde, hasta).
	// Empty result sets yield zero, never an error.
	Sumar(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
	// SumarOperativos is Sumar minus APERTURA entries: the opening seed
	// mirrors monto_inicial, which reconciliation adds separately.
	SumarOperativos(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
	SumarOperativosTx(tx *gorm.DB, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) Create(ctx context.Context, m *model.MovimientoCaja) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoRepo) CreateTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) List(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND usuario_id = ? AND fecha >= ? AND fecha < ?", cajaID, usuarioID, desde, hasta).
		Order("fecha ASC, created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) ListPorApertura(ctx context.Context, aperturaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("apertura_id = ?", aperturaID).
		Order("fecha ASC, created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *movimientoRepo) Sumar(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return sumarMontos(r.db.WithContext(ctx), cajaID, usuarioID, desde, hasta, false)
}

func (r *movimientoRepo) SumarOperativos(ctx context.Context, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return sumarMontos(r.db.WithContext(ctx), cajaID, usuarioID, desde, hasta, true)
}

func (r *movimientoRepo) SumarOperativosTx(tx *gorm.DB, cajaID, usuarioID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	return sumarMontos(tx, cajaID, usuarioID, desde, hasta, true)
}

func sumarMontos(db *gorm.DB, cajaID, usuarioID uuid.UUID, desde, hasta time.Time, sinApertura bool) (decimal.Decimal, error) {
	q := db.Model(&model.MovimientoCaja{}).
		Where("caja_id = ? AND usuario_id = ? AND fecha >= ? AND fecha < ?", cajaID, usuarioID, desde, hasta)
	if sinApertura {
		q = q.Where("tipo <> ?", model.MovimientoApertura)
	}
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(monto), 0)").Scan(&total).Error
	return total, err
}
