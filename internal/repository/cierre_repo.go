package repository

import (
	"context"

	"cajaflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CierreRepository interface {
	DB() *gorm.DB
	CreateTx(tx *gorm.DB, c *model.CierreCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CierreCaja, error)
	UpdateTx(tx *gorm.DB, c *model.CierreCaja) error
	ListPorEstado(ctx context.Context, estado string, page, limit int) ([]model.CierreCaja, int64, error)
	CreateRevisionTx(tx *gorm.DB, rev *model.RevisionCierre) error
	ListRevisiones(ctx context.Context, cierreID uuid.UUID) ([]model.RevisionCierre, error)
}

type cierreRepo struct{ db *gorm.DB }

func NewCierreRepository(db *gorm.DB) CierreRepository { return &cierreRepo{db: db} }

func (r *cierreRepo) DB() *gorm.DB { return r.db }

func (r *cierreRepo) CreateTx(tx *gorm.DB, c *model.CierreCaja) error {
	if err := tx.Create(c).Error; err != nil {
		if esViolacionUnicidad(err) {
			return ErrDuplicado
		}
		return err
	}
	return nil
}

func (r *cierreRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.CierreCaja, error) {
	var c model.CierreCaja
	err := tx.First(&c, id).Error
	return &c, err
}

func (r *cierreRepo) UpdateTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Save(c).Error
}

func (r *cierreRepo) ListPorEstado(ctx context.Context, estado string, page, limit int) ([]model.CierreCaja, int64, error) {
	var cierres []model.CierreCaja
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CierreCaja{}).Where("estado = ?", estado)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("fecha_cierre DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&cierres).Error
	return cierres, total, err
}

func (r *cierreRepo) CreateRevisionTx(tx *gorm.DB, rev *model.RevisionCierre) error {
	return tx.Create(rev).Error
}

func (r *cierreRepo) ListRevisiones(ctx context.Context, cierreID uuid.UUID) ([]model.RevisionCierre, error) {
	var revs []model.RevisionCierre
	err := r.db.WithContext(ctx).
		Where("cierre_id = ?", cierreID).
		Order("created_at ASC").
		Find(&revs).Error
	return revs, err
}
