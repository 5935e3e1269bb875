package repository

import (
	"context"
	"time"

	"cajaflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AperturaRepository interface {
	// DB exposes the underlying handle so services can open transactions;
	// nil in unit tests (in-memory fakes).
	DB() *gorm.DB
	CreateTx(tx *gorm.DB, a *model.Apertura) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Apertura, error)
	// FindAbiertaPorUsuario returns the most recent apertura without cierre
	// for the given usuario, regardless of business day.
	FindAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Apertura, error)
	ListAbiertasPorCajaTx(tx *gorm.DB, cajaID uuid.UUID) ([]model.Apertura, error)
	// MarcarCerradaTx flips estado abierta→cerrada with a guarded UPDATE.
	// Returns false when the apertura was already closed by a concurrent
	// caller (zero rows affected).
	MarcarCerradaTx(tx *gorm.DB, id uuid.UUID, closedAt time.Time) (bool, error)
	ListCerradas(ctx context.Context, page, limit int) ([]model.Apertura, int64, error)
}

type aperturaRepo struct{ db *gorm.DB }

func NewAperturaRepository(db *gorm.DB) AperturaRepository { return &aperturaRepo{db: db} }

func (r *aperturaRepo) DB() *gorm.DB { return r.db }

func (r *aperturaRepo) CreateTx(tx *gorm.DB, a *model.Apertura) error {
	if err := tx.Create(a).Error; err != nil {
		if esViolacionUnicidad(err) {
			return ErrDuplicado
		}
		return err
	}
	return nil
}

func (r *aperturaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Apertura, error) {
	var a model.Apertura
	err := r.db.WithContext(ctx).Preload("Cierre").First(&a, id).Error
	return &a, err
}

func (r *aperturaRepo) FindAbiertaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.Apertura, error) {
	var a model.Apertura
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado = ?", usuarioID, model.AperturaAbierta).
		Order("opened_at DESC").
		First(&a).Error
	return &a, err
}

func (r *aperturaRepo) ListAbiertasPorCajaTx(tx *gorm.DB, cajaID uuid.UUID) ([]model.Apertura, error) {
	var aperturas []model.Apertura
	err := tx.
		Where("caja_id = ? AND estado = ?", cajaID, model.AperturaAbierta).
		Order("opened_at ASC").
		Find(&aperturas).Error
	return aperturas, err
}

func (r *aperturaRepo) MarcarCerradaTx(tx *gorm.DB, id uuid.UUID, closedAt time.Time) (bool, error) {
	res := tx.Model(&model.Apertura{}).
		Where("id = ? AND estado = ?", id, model.AperturaAbierta).
		Updates(map[string]interface{}{"estado": model.AperturaCerrada, "closed_at": closedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *aperturaRepo) ListCerradas(ctx context.Context, page, limit int) ([]model.Apertura, int64, error) {
	var aperturas []model.Apertura
	var total int64
	q := r.db.WithContext(ctx).Model(&model.Apertura{}).Where("estado = ?", model.AperturaCerrada)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Cierre").
		Order("closed_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&aperturas).Error
	return aperturas, total, err
}
